package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/searchinto/internal/db"
	"github.com/kailas-cloud/searchinto/internal/domain"
	domdoc "github.com/kailas-cloud/searchinto/internal/domain/document"
)

type storedDoc struct {
	Type      string         `json:"_type"`
	Version   int64          `json:"_version"`
	Timestamp string         `json:"_timestamp,omitempty"`
	Source    map[string]any `json:"_source"`
}

// Write stores a batch of write requests in one read and one write pipeline.
// The result holds one error per request, nil on success.
//
// A request without a version gets the stored version plus one. A request with
// a version is externally versioned and is rejected with ErrVersionConflict
// unless it is newer than the stored one, or than an earlier request of the
// same batch for the same document.
func (r *Repo) Write(ctx context.Context, reqs []*domdoc.WriteRequest) []error {
	errs := make([]error, len(reqs))
	if len(reqs) == 0 {
		return errs
	}

	keys := make([]string, len(reqs))
	for i, req := range reqs {
		keys[i] = r.docKey(req.Index(), req.ID())
	}

	current, err := r.store.JSONGetMulti(ctx, keys, pathVersion)
	if err != nil {
		return fill(errs, fmt.Errorf("read versions: %w", err))
	}

	items := make([]db.JSONSetItem, 0, len(reqs))
	written := make([]int, 0, len(reqs))
	batched := make(map[string]int64, len(reqs))
	for i, req := range reqs {
		var stored int64
		if i < len(current) {
			stored = storedVersion(current[i])
		}
		stored = max(stored, batched[keys[i]])
		version := stored + 1
		if v, ok := req.Version(); ok {
			if v <= stored {
				errs[i] = fmt.Errorf("%s/%s: stored version %d, got %d: %w",
					req.Index(), req.ID(), stored, v, domain.ErrVersionConflict)
				continue
			}
			version = v
		}

		data, err := json.Marshal(storedDoc{
			Type:      req.Type(),
			Version:   version,
			Timestamp: req.Timestamp(),
			Source:    req.Source(),
		})
		if err != nil {
			errs[i] = fmt.Errorf("marshal %s/%s: %w", req.Index(), req.ID(), err)
			continue
		}

		item := db.JSONSetItem{Key: keys[i], Path: "$", Data: data}
		if ttl, ok := req.TTL(); ok && ttl > 0 {
			item.TTL = time.Duration(ttl) * time.Millisecond
		}
		items = append(items, item)
		written = append(written, i)
		batched[keys[i]] = version
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		err = fmt.Errorf("write batch: %w", err)
		for _, i := range written {
			errs[i] = err
		}
	}
	return errs
}

// storedVersion reads a "$._version" reply; missing documents are version 0.
func storedVersion(raw []byte) int64 {
	if raw == nil {
		return 0
	}
	return gjson.GetBytes(raw, "0").Int()
}

func fill(errs []error, err error) []error {
	for i := range errs {
		errs[i] = err
	}
	return errs
}
