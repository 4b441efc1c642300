package chi

import "github.com/kailas-cloud/searchinto/internal/domain/projection"

// PlanEntry is one mapping rule of a compiled plan.
type PlanEntry struct {
	Output        string         `json:"output"`
	Kind          string         `json:"kind"`
	Target        string         `json:"target"`
	Field         string         `json:"field,omitempty"`
	Value         *string        `json:"value,omitempty"`
	Script        string         `json:"script,omitempty"`
	Lang          string         `json:"lang,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	IgnoreFailure bool           `json:"ignore_failure,omitempty"`
}

// PlanScript is one script the export evaluates per document.
type PlanScript struct {
	Output string `json:"output"`
	Name   string `json:"name"`
	Lang   string `json:"lang"`
}

// PlanResponse is the preview of a compiled field mapping.
type PlanResponse struct {
	Entries        []PlanEntry  `json:"entries"`
	FetchFields    []string     `json:"fetch_fields"`
	ScriptFields   []PlanScript `json:"script_fields"`
	FetchAllFields bool         `json:"fetch_all_fields"`
}

// NewPlanResponse describes a plan for clients.
func NewPlanResponse(p *projection.Plan) PlanResponse {
	resp := PlanResponse{
		Entries:        []PlanEntry{},
		FetchFields:    p.FetchFields(),
		ScriptFields:   []PlanScript{},
		FetchAllFields: p.FetchAllFields(),
	}

	for _, e := range p.Entries() {
		entry := PlanEntry{Output: e.OutputName, Kind: e.Source.Kind().String(), Target: e.Target}
		switch e.Source.Kind() {
		case projection.KindPlainField:
			entry.Field = e.Source.Field()
		case projection.KindLiteral:
			v := e.Source.Value()
			entry.Value = &v
		case projection.KindScript:
			sf := e.Source.ScriptField()
			entry.Script = sf.Expression
			entry.Lang = sf.Language
			entry.Params = sf.Params
			entry.IgnoreFailure = sf.IgnoreFailure
		}
		resp.Entries = append(resp.Entries, entry)
	}

	for _, b := range p.Scripts() {
		resp.ScriptFields = append(resp.ScriptFields, PlanScript{
			Output: b.OutputName,
			Name:   b.Script.Name,
			Lang:   b.Script.Language,
		})
	}
	return resp
}
