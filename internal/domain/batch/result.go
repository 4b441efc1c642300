package batch

// ItemStatus is the export outcome of a single source document.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of exporting one source document.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result for a source document id.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed result for a source document id.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the source document id.
func (r Result) ID() string { return r.id }

// Status returns the export outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
