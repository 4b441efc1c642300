package assembler

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/searchinto/internal/domain"
	"github.com/kailas-cloud/searchinto/internal/domain/document"
)

// systemWriter sets exactly one write request attribute from a value.
type systemWriter func(req *document.WriteRequest, value any) error

// systemWriters is the fixed table of reserved target names.
var systemWriters = map[string]systemWriter{
	document.FieldSource:    writeSource,
	document.FieldIndex:     stringWriter(document.FieldIndex, (*document.WriteRequest).SetIndex),
	document.FieldID:        stringWriter(document.FieldID, (*document.WriteRequest).SetID),
	document.FieldType:      stringWriter(document.FieldType, (*document.WriteRequest).SetType),
	document.FieldTimestamp: stringWriter(document.FieldTimestamp, (*document.WriteRequest).SetTimestamp),
	document.FieldTTL:       intWriter(document.FieldTTL, (*document.WriteRequest).SetTTL),
	document.FieldVersion:   intWriter(document.FieldVersion, (*document.WriteRequest).SetVersion),
}

// IsReserved reports whether name is a system attribute with a dedicated writer.
func IsReserved(name string) bool {
	_, ok := systemWriters[name]
	return ok
}

func writeSource(req *document.WriteRequest, value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &domain.TypeCoercionError{Field: document.FieldSource, Want: "an object", Value: value}
	}
	req.ReplaceSource(copyTree(m))
	return nil
}

func stringWriter(field string, set func(*document.WriteRequest, string)) systemWriter {
	return func(req *document.WriteRequest, value any) error {
		s, err := cast.ToStringE(value)
		if err != nil {
			return &domain.TypeCoercionError{Field: field, Want: "a string", Value: value}
		}
		set(req, s)
		return nil
	}
}

func intWriter(field string, set func(*document.WriteRequest, int64)) systemWriter {
	return func(req *document.WriteRequest, value any) error {
		n, ok := toInt64(value)
		if !ok {
			return &domain.TypeCoercionError{Field: field, Want: "an integer", Value: value}
		}
		set(req, n)
		return nil
	}
}

// toInt64 accepts integer kinds and integral floats (JSON numbers decode as float64).
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
