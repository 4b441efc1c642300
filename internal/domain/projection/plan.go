package projection

// Entry is one mapping rule from a source value to a destination attribute.
type Entry struct {
	OutputName string
	Source     Source
	Target     string
}

// Output is the resolved view of one distinct output name: where its value goes
// and how it is obtained.
type Output struct {
	Name          string
	Target        string
	Literal       string
	IsLiteral     bool
	IgnoreFailure bool
}

// ScriptBinding ties a script descriptor to the output name its value is supplied under.
type ScriptBinding struct {
	OutputName string
	Script     ScriptField
}

// Plan is the compiled form of a field mapping. It is immutable once returned by
// Compile and safe for concurrent readers.
type Plan struct {
	entries     []Entry
	outputs     []Output
	fetchFields []string
	scripts     []ScriptBinding
	fetchAll    bool
}

// Entries returns the mapping rules in declaration order.
func (p *Plan) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Outputs returns one resolved output per distinct output name, in first-seen order.
func (p *Plan) Outputs() []Output {
	out := make([]Output, len(p.outputs))
	copy(out, p.outputs)
	return out
}

// FetchFields returns the plain fields the driver must read from each source document.
func (p *Plan) FetchFields() []string {
	out := make([]string, len(p.fetchFields))
	copy(out, p.fetchFields)
	return out
}

// Scripts returns the script fields the driver must evaluate per source document.
func (p *Plan) Scripts() []ScriptBinding {
	out := make([]ScriptBinding, len(p.scripts))
	copy(out, p.scripts)
	return out
}

// FetchAllFields reports that no plain field was selected, so the whole source
// document has to be retrieved instead of an empty field set.
func (p *Plan) FetchAllFields() bool { return p.fetchAll }

// Target returns the destination attribute for an output name.
func (p *Plan) Target(outputName string) (string, bool) {
	for _, o := range p.outputs {
		if o.Name == outputName {
			return o.Target, true
		}
	}
	return "", false
}
