package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Hit is one matched source document as read from the source index.
type Hit struct {
	index     string
	id        string
	docType   string
	version   int64
	timestamp string
	source    json.RawMessage
}

// NewHit creates a hit. source is the raw JSON object of the document content.
func NewHit(index, id, docType string, version int64, timestamp string, source json.RawMessage) Hit {
	if len(source) == 0 {
		source = json.RawMessage("{}")
	}
	return Hit{index: index, id: id, docType: docType, version: version, timestamp: timestamp, source: source}
}

// Index returns the index the hit was read from.
func (h Hit) Index() string { return h.index }

// ID returns the document identifier.
func (h Hit) ID() string { return h.id }

// Type returns the document type.
func (h Hit) Type() string { return h.docType }

// Version returns the stored document version (0 when unversioned).
func (h Hit) Version() int64 { return h.version }

// Timestamp returns the stored document timestamp.
func (h Hit) Timestamp() string { return h.timestamp }

// RawSource returns the raw JSON content.
func (h Hit) RawSource() json.RawMessage { return h.source }

// SourceMap decodes the content into a fresh map.
func (h Hit) SourceMap() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(h.source, &m); err != nil {
		return nil, fmt.Errorf("decode source of %s/%s: %w", h.index, h.id, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

// Field resolves a plain field reference. Reserved names resolve from hit
// metadata, anything else is a dotted lookup inside the content. A hit carries
// no ttl, so _ttl is always absent. The second result is false when the field
// is absent.
func (h Hit) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return h.id, h.id != ""
	case FieldIndex:
		return h.index, h.index != ""
	case FieldType:
		return h.docType, h.docType != ""
	case FieldTimestamp:
		return h.timestamp, h.timestamp != ""
	case FieldVersion:
		return h.version, h.version != 0
	case FieldSource:
		m, err := h.SourceMap()
		if err != nil {
			return nil, false
		}
		return m, true
	case FieldTTL:
		return nil, false
	}

	res := gjson.GetBytes(h.source, contentPath(name))
	if !res.Exists() || res.Type == gjson.Null {
		return nil, false
	}
	return res.Value(), true
}

// contentPath turns a dotted field name into a gjson path whose segments match
// keys literally, so wildcards, modifiers and queries are never evaluated.
func contentPath(name string) string {
	segs := strings.Split(name, ".")
	for i, seg := range segs {
		segs[i] = gjson.Escape(seg)
	}
	return strings.Join(segs, ".")
}
