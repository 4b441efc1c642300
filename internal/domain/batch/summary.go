package batch

// Failure is a reported per-document error.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Summary aggregates the results of one export run.
type Summary struct {
	Read      int       `json:"read"`
	Written   int       `json:"written"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
	Truncated bool      `json:"failures_truncated,omitempty"`

	maxReported int
}

// NewSummary creates an empty summary that keeps at most maxReported failures.
// A non-positive limit keeps none.
func NewSummary(maxReported int) *Summary {
	return &Summary{maxReported: maxReported}
}

// Add counts one result.
func (s *Summary) Add(r Result) {
	s.Read++
	if r.Status() == StatusOK {
		s.Written++
		return
	}
	s.Failed++
	if len(s.Failures) >= s.maxReported {
		s.Truncated = true
		return
	}
	msg := ""
	if r.Err() != nil {
		msg = r.Err().Error()
	}
	s.Failures = append(s.Failures, Failure{ID: r.ID(), Error: msg})
}

// AddAll counts a page of results.
func (s *Summary) AddAll(rs []Result) {
	for _, r := range rs {
		s.Add(r)
	}
}
