// Package script evaluates script fields against one source document.
package script

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nqd/flat"

	"github.com/kailas-cloud/searchinto/internal/domain"
	"github.com/kailas-cloud/searchinto/internal/domain/document"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
)

// Global names visible to every script.
const (
	GlobalSource = "_source"
	GlobalDoc    = "doc"
	GlobalParams = "params"
	GlobalID     = "_id"
	GlobalIndex  = "_index"
	GlobalType   = "_type"
	GlobalTime   = "time"
)

// Engine compiles expressions of one language.
type Engine interface {
	Language() string
	Compile(name, expression string) (Program, error)
}

// Program is a compiled expression. Run must be safe for concurrent use.
type Program interface {
	Run(ctx context.Context, b Bindings) (any, error)
}

// Bindings are the per-document values a script can read.
type Bindings struct {
	Source map[string]any
	Doc    map[string]any
	Params map[string]any
	ID     string
	Index  string
	Type   string
}

// NewBindings decodes a hit into script bindings. Each call decodes a fresh
// source tree and copies params, so a script mutating its globals cannot leak
// into another document or into the compiled plan.
func NewBindings(hit document.Hit, params map[string]any) (Bindings, error) {
	src, err := hit.SourceMap()
	if err != nil {
		return Bindings{}, err
	}
	doc, err := docValues(src)
	if err != nil {
		return Bindings{}, fmt.Errorf("flatten source of %q: %w", hit.ID(), err)
	}
	return Bindings{
		Source: src,
		Doc:    doc,
		Params: copyParams(params),
		ID:     hit.ID(),
		Index:  hit.Index(),
		Type:   hit.Type(),
	}, nil
}

// Globals returns the bindings keyed by global name.
func (b Bindings) Globals() map[string]any {
	return map[string]any{
		GlobalSource: b.Source,
		GlobalDoc:    b.Doc,
		GlobalParams: b.Params,
		GlobalID:     b.ID,
		GlobalIndex:  b.Index,
		GlobalType:   b.Type,
	}
}

// Now returns the current time in epoch milliseconds, as exposed by time().
var Now = func() int64 { return time.Now().UnixMilli() }

// docValues flattens the source into leaf fields, each exposed as {value, values}.
func docValues(src map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	if len(src) == 0 {
		return out, nil
	}
	leaves, err := flat.Flatten(src, &flat.Options{Delimiter: ".", Safe: true})
	if err != nil {
		return nil, err
	}
	for name, v := range leaves {
		values, isList := v.([]any)
		if !isList {
			values = []any{v}
		}
		var first any
		if len(values) > 0 {
			first = values[0]
		}
		out[name] = map[string]any{"value": first, "values": values}
	}
	return out, nil
}

func copyParams(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyParam(v)
	}
	return out
}

func copyParam(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyParams(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyParam(e)
		}
		return out
	default:
		return v
	}
}

// Registry resolves script languages to engines.
type Registry struct {
	engines map[string]Engine
}

// NewRegistry creates a registry serving the given engines.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine, len(engines))}
	for _, e := range engines {
		r.engines[strings.ToLower(e.Language())] = e
	}
	return r
}

// Alias makes alias resolve to the engine of lang.
func (r *Registry) Alias(alias, lang string) *Registry {
	if e, ok := r.engines[strings.ToLower(lang)]; ok {
		r.engines[strings.ToLower(alias)] = e
	}
	return r
}

// Languages returns the registered language names, aliases included.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.engines))
	for name := range r.engines {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Compile resolves and compiles a script field.
func (r *Registry) Compile(sf projection.ScriptField) (Program, error) {
	lang := strings.ToLower(sf.Language)
	engine, ok := r.engines[lang]
	if !ok {
		return nil, fmt.Errorf("script %q: %w: %q", sf.Name, domain.ErrUnknownLanguage, sf.Language)
	}
	p, err := engine.Compile(sf.Name, sf.Expression)
	if err != nil {
		return nil, fmt.Errorf("compile script %q: %w", sf.Name, domain.NewParseError(sf.Expression, "%v", err))
	}
	return p, nil
}
