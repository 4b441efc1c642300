package document

// Reserved attribute names. They never take part in dotted-path nesting.
const (
	FieldSource    = "_source"
	FieldIndex     = "_index"
	FieldID        = "_id"
	FieldType      = "_type"
	FieldTimestamp = "_timestamp"
	FieldTTL       = "_ttl"
	FieldVersion   = "_version"
)

// WriteRequest describes one target document. It is created empty per source
// document, filled by the assembler and owned by a single worker.
type WriteRequest struct {
	index     string
	docType   string
	id        string
	timestamp string
	ttl       *int64
	version   *int64
	source    map[string]any
}

// NewWriteRequest creates an empty write request.
func NewWriteRequest() *WriteRequest {
	return &WriteRequest{source: make(map[string]any)}
}

// Index returns the target index.
func (r *WriteRequest) Index() string { return r.index }

// Type returns the document type.
func (r *WriteRequest) Type() string { return r.docType }

// ID returns the document identifier.
func (r *WriteRequest) ID() string { return r.id }

// Timestamp returns the document timestamp.
func (r *WriteRequest) Timestamp() string { return r.timestamp }

// TTL returns the time-to-live in milliseconds and whether it is set.
func (r *WriteRequest) TTL() (int64, bool) {
	if r.ttl == nil {
		return 0, false
	}
	return *r.ttl, true
}

// Version returns the external version and whether it is set.
func (r *WriteRequest) Version() (int64, bool) {
	if r.version == nil {
		return 0, false
	}
	return *r.version, true
}

// Source returns the nested content tree. The map is owned by the request.
func (r *WriteRequest) Source() map[string]any { return r.source }

// SetIndex sets the target index.
func (r *WriteRequest) SetIndex(index string) { r.index = index }

// SetType sets the document type.
func (r *WriteRequest) SetType(t string) { r.docType = t }

// SetID sets the document identifier.
func (r *WriteRequest) SetID(id string) { r.id = id }

// SetTimestamp sets the document timestamp.
func (r *WriteRequest) SetTimestamp(ts string) { r.timestamp = ts }

// SetTTL sets the time-to-live in milliseconds.
func (r *WriteRequest) SetTTL(ms int64) { r.ttl = &ms }

// SetVersion sets the external version.
func (r *WriteRequest) SetVersion(v int64) { r.version = &v }

// ReplaceSource replaces the whole content tree.
func (r *WriteRequest) ReplaceSource(src map[string]any) {
	if src == nil {
		src = make(map[string]any)
	}
	r.source = src
}
