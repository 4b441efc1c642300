package projection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/kailas-cloud/searchinto/internal/domain"
)

// Script descriptor keys.
const (
	keyScript        = "script"
	keyName          = "name"
	keyLang          = "lang"
	keyParams        = "params"
	keyIgnoreFailure = "ignore_failure"
)

// Option configures compilation.
type Option func(*builder)

// WithDefaultLanguage sets the language of scripts that do not name one.
func WithDefaultLanguage(lang string) Option {
	return func(b *builder) {
		if lang != "" {
			b.lang = lang
		}
	}
}

// CompileJSON decodes a JSON field mapping and compiles it.
func CompileJSON(data []byte, opts ...Option) (*Plan, error) {
	var mapping any
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("decode field mapping: %w", domain.NewParseError(string(data), "%v", err))
	}
	return Compile(mapping, opts...)
}

// Compile turns a decoded field mapping into a projection plan.
//
// The mapping is either a single field name or a sequence whose elements are
// field names or [target, source] pairs. A source is a field name, a quoted
// literal, a source-dereferencing expression, or a script descriptor object.
func Compile(mapping any, opts ...Option) (*Plan, error) {
	b := newBuilder()
	for _, opt := range opts {
		opt(b)
	}

	switch s := mapping.(type) {
	case string:
		if err := b.addBare(s); err != nil {
			return nil, err
		}
	case []string:
		for _, name := range s {
			if err := b.addBare(name); err != nil {
				return nil, err
			}
		}
	case []any:
		for _, elem := range s {
			if err := b.addElement(elem); err != nil {
				return nil, err
			}
		}
	default:
		return nil, domain.NewParseError(mapping, "fields must be a string or a list, got %T", mapping)
	}

	return b.build(), nil
}

type builder struct {
	lang    string
	entries []Entry
	targets map[string]string
	order   []string
}

func newBuilder() *builder {
	return &builder{lang: DefaultLanguage, targets: make(map[string]string)}
}

func (b *builder) addElement(elem any) error {
	switch e := elem.(type) {
	case string:
		return b.addBare(e)
	case []any:
		return b.addPair(e)
	case []string:
		pair := make([]any, len(e))
		for i := range e {
			pair[i] = e[i]
		}
		return b.addPair(pair)
	default:
		return domain.NewParseError(elem, "field entry must be a name or a [target, source] pair, got %T", elem)
	}
}

func (b *builder) addBare(name string) error {
	if name == "" {
		return domain.NewParseError(name, "field name is empty")
	}
	b.add(Entry{OutputName: name, Source: b.classifyReference(name), Target: name})
	return nil
}

func (b *builder) addPair(pair []any) error {
	if len(pair) != 2 {
		return domain.NewParseError(pair, "target mapping must have exactly two elements, got %d", len(pair))
	}
	target, ok := pair[0].(string)
	if !ok || target == "" {
		return domain.NewParseError(pair, "target must be a non-empty string")
	}

	switch src := pair[1].(type) {
	case string:
		if src == "" {
			return domain.NewParseError(pair, "source is empty")
		}
		if lit, ok := Literal(src); ok {
			b.add(Entry{OutputName: src, Source: LiteralConstant(lit), Target: target})
			return nil
		}
		b.add(Entry{OutputName: src, Source: b.classifyReference(src), Target: target})
		return nil
	case map[string]any:
		sf, err := b.parseDescriptor(target, src)
		if err != nil {
			return err
		}
		b.add(Entry{OutputName: ScriptFieldPrefix + sf.Name, Source: Script(sf), Target: target})
		return nil
	default:
		return domain.NewParseError(pair, "source must be a string or a script object, got %T", pair[1])
	}
}

func (b *builder) add(e Entry) {
	if _, seen := b.targets[e.OutputName]; !seen {
		b.order = append(b.order, e.OutputName)
	}
	b.targets[e.OutputName] = e.Target
	b.entries = append(b.entries, e)
}

func (b *builder) build() *Plan {
	p := &Plan{entries: b.entries}

	var fetch []string
	scripts := make(map[string]int)
	for _, e := range b.entries {
		switch e.Source.Kind() {
		case KindPlainField:
			if strings.HasPrefix(e.OutputName, ScriptFieldPrefix) {
				continue
			}
			fetch = append(fetch, e.OutputName)
		case KindScript:
			binding := ScriptBinding{OutputName: e.OutputName, Script: e.Source.ScriptField()}
			if i, ok := scripts[e.OutputName]; ok {
				p.scripts[i] = binding
				continue
			}
			scripts[e.OutputName] = len(p.scripts)
			p.scripts = append(p.scripts, binding)
		}
	}
	p.fetchFields = lo.Uniq(fetch)
	p.fetchAll = len(p.fetchFields) == 0

	for _, name := range b.order {
		out := Output{Name: name, Target: b.targets[name]}
		for _, e := range b.entries {
			if e.OutputName != name {
				continue
			}
			switch e.Source.Kind() {
			case KindLiteral:
				out.IsLiteral = true
				out.Literal = e.Source.Value()
			case KindScript:
				out.IgnoreFailure = e.Source.ScriptField().IgnoreFailure
			}
		}
		p.outputs = append(p.outputs, out)
	}
	return p
}

// classifyReference decides between a plain field and a source-extracting script
// for an unquoted reference.
func (b *builder) classifyReference(ref string) Source {
	if strings.HasPrefix(ref, ScriptFieldPrefix) || !dereferencesSource(ref) {
		return PlainField(ref)
	}
	return Script(ScriptField{
		Name:          ref,
		Expression:    ref,
		Language:      b.lang,
		IgnoreFailure: true,
	})
}

func (b *builder) parseDescriptor(target string, desc map[string]any) (ScriptField, error) {
	sf := ScriptField{Name: target, Language: b.lang}

	for key, raw := range desc {
		switch key {
		case keyScript:
			s, ok := raw.(string)
			if !ok {
				return ScriptField{}, domain.NewParseError(desc, "%q must be a string", key)
			}
			sf.Expression = s
		case keyName:
			s, ok := raw.(string)
			if !ok || s == "" {
				return ScriptField{}, domain.NewParseError(desc, "%q must be a non-empty string", key)
			}
			sf.Name = s
		case keyLang:
			s, ok := raw.(string)
			if !ok {
				return ScriptField{}, domain.NewParseError(desc, "%q must be a string", key)
			}
			if s != "" {
				sf.Language = s
			}
		case keyIgnoreFailure:
			v, ok := raw.(bool)
			if !ok {
				return ScriptField{}, domain.NewParseError(desc, "%q must be a boolean", key)
			}
			sf.IgnoreFailure = v
		case keyParams:
			if raw == nil {
				continue
			}
			params, ok := raw.(map[string]any)
			if !ok {
				return ScriptField{}, domain.NewParseError(desc, "%q must be an object", key)
			}
			sf.Params = params
		}
	}

	if sf.Expression == "" {
		return ScriptField{}, domain.NewParseError(desc, "script object for %q has no %q", target, keyScript)
	}
	return sf, nil
}
