package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nqd/flat"
	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/searchinto/internal/db"
	"github.com/kailas-cloud/searchinto/internal/domain"
	domdoc "github.com/kailas-cloud/searchinto/internal/domain/document"
)

// Metadata paths read alongside projected source fields.
const (
	pathType      = "$._type"
	pathVersion   = "$._version"
	pathTimestamp = "$._timestamp"
)

// Page lists one page of keys and loads their documents in a single pipeline.
// Keys removed between listing and loading are skipped.
func (r *Repo) Page(ctx context.Context, q domdoc.PageQuery) (domdoc.Page, error) {
	keys, err := r.store.ListKeys(ctx, r.indexName(q.Index), q.Query, q.Offset, q.Limit)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return domdoc.Page{}, fmt.Errorf("source index %q: %w", q.Index, domain.ErrNotFound)
		}
		return domdoc.Page{}, fmt.Errorf("list %s: %w", q.Index, err)
	}
	if len(keys.Keys) == 0 {
		return domdoc.Page{Total: keys.Total}, nil
	}

	fields := sourceFields(q.Fields)
	full := q.Full || slices.Contains(q.Fields, domdoc.FieldSource)

	paths := []string{"$"}
	if !full {
		paths = []string{pathType, pathVersion, pathTimestamp}
		for _, f := range fields {
			paths = append(paths, sourcePath(f))
		}
	}

	replies, err := r.store.JSONGetMulti(ctx, keys.Keys, paths...)
	if err != nil {
		return domdoc.Page{}, fmt.Errorf("load %s: %w", q.Index, err)
	}

	page := domdoc.Page{Total: keys.Total, Hits: make([]domdoc.Hit, 0, len(replies))}
	for i, raw := range replies {
		if raw == nil {
			continue
		}
		id := r.docID(q.Index, keys.Keys[i])
		var hit domdoc.Hit
		if full {
			hit, err = parseFull(q.Index, id, raw)
		} else {
			hit, err = parseProjected(q.Index, id, raw, fields)
		}
		if err != nil {
			return domdoc.Page{}, fmt.Errorf("parse %s: %w", keys.Keys[i], err)
		}
		page.Hits = append(page.Hits, hit)
	}
	return page, nil
}

// sourceFields drops metadata names and fields covered by a requested ancestor.
func sourceFields(fields []string) []string {
	var out []string
	for _, f := range fields {
		switch f {
		case domdoc.FieldID, domdoc.FieldIndex, domdoc.FieldType,
			domdoc.FieldVersion, domdoc.FieldTimestamp, domdoc.FieldTTL, domdoc.FieldSource, "":
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	out = slices.Compact(out)

	kept := out[:0]
	for _, f := range out {
		if !slices.ContainsFunc(kept, func(k string) bool { return strings.HasPrefix(f, k+".") }) {
			kept = append(kept, f)
		}
	}
	return kept
}

// sourcePath turns a dotted field into a bracketed JSONPath under _source.
func sourcePath(field string) string {
	var b strings.Builder
	b.WriteString("$._source")
	for _, seg := range strings.Split(field, ".") {
		b.WriteString("[")
		b.WriteString(strconv.Quote(seg))
		b.WriteString("]")
	}
	return b.String()
}

// parseFull reads a "$" reply: a one-element array holding the document.
func parseFull(index, id string, raw []byte) (domdoc.Hit, error) {
	doc := gjson.GetBytes(raw, "0")
	if !doc.IsObject() {
		return domdoc.Hit{}, fmt.Errorf("document is not an object: %s", raw)
	}
	source := doc.Get("_source")
	var src json.RawMessage
	if source.Exists() {
		if !source.IsObject() {
			return domdoc.Hit{}, fmt.Errorf("_source is not an object")
		}
		src = json.RawMessage(source.Raw)
	}
	return domdoc.NewHit(index, id,
		doc.Get("_type").String(),
		doc.Get("_version").Int(),
		doc.Get("_timestamp").String(),
		src,
	), nil
}

// parseProjected reads a multi-path reply keyed by path and rebuilds a
// partial _source holding only the requested fields.
func parseProjected(index, id string, raw []byte, fields []string) (domdoc.Hit, error) {
	var byPath map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &byPath); err != nil {
		return domdoc.Hit{}, fmt.Errorf("decode projection: %w", err)
	}

	first := func(path string) gjson.Result {
		vals := byPath[path]
		if len(vals) == 0 {
			return gjson.Result{}
		}
		return gjson.ParseBytes(vals[0])
	}

	dotted := make(map[string]any, len(fields))
	for _, f := range fields {
		vals := byPath[sourcePath(f)]
		if len(vals) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(vals[0], &v); err != nil {
			return domdoc.Hit{}, fmt.Errorf("decode %s: %w", f, err)
		}
		dotted[f] = v
	}

	var src json.RawMessage
	if len(dotted) > 0 {
		nested, err := flat.Unflatten(dotted, nil)
		if err != nil {
			return domdoc.Hit{}, fmt.Errorf("rebuild source: %w", err)
		}
		if src, err = json.Marshal(nested); err != nil {
			return domdoc.Hit{}, fmt.Errorf("encode source: %w", err)
		}
	}

	return domdoc.NewHit(index, id,
		first(pathType).String(),
		first(pathVersion).Int(),
		first(pathTimestamp).String(),
		src,
	), nil
}
