package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchinto/internal/db"
)

// ListKeys returns one page of document keys matching query in index.
// With scan listing enabled, query "*" falls back to SCAN over the index key prefix.
func (s *Store) ListKeys(ctx context.Context, index, query string, offset, limit int) (*db.KeyPage, error) {
	if query == "" {
		query = "*"
	}
	if query == "*" && s.scanListing {
		return s.scanList(ctx, index, offset, limit)
	}

	args := []string{index, query, "NOCONTENT", "LIMIT", strconv.Itoa(offset), strconv.Itoa(limit)}
	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKeyList(raw)
}

// parseKeyList reads a NOCONTENT reply: [total, key1, key2, ...].
func parseKeyList(raw []rueidis.RedisMessage) (*db.KeyPage, error) {
	if len(raw) == 0 {
		return &db.KeyPage{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	page := &db.KeyPage{Total: int(total), Keys: make([]string, 0, len(raw)-1)}
	for _, msg := range raw[1:] {
		key, err := msg.ToString()
		if err != nil {
			return nil, fmt.Errorf("parse key: %w", err)
		}
		page.Keys = append(page.Keys, key)
	}
	return page, nil
}

// scanList pages over the sorted SCAN result for the index key prefix.
func (s *Store) scanList(ctx context.Context, index string, offset, limit int) (*db.KeyPage, error) {
	keys, err := s.scan(ctx, indexToKeyPrefix(index)+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	sort.Strings(keys)

	total := len(keys)
	if offset >= total {
		return &db.KeyPage{Total: total}, nil
	}
	end := min(offset+limit, total)
	return &db.KeyPage{Total: total, Keys: keys[offset:end]}, nil
}

func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// indexToKeyPrefix converts an index name to its key prefix.
// "si:people:idx" -> "si:people:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}
