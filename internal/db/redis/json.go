package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchinto/internal/db"
)

// JSONGetMulti reads the given paths of many keys in a single DoMulti round-trip.
// Missing keys yield a nil entry.
func (s *Store) JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Arbitrary("JSON.GET").Keys(key).Args(paths...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([][]byte, len(results))
	for i, res := range results {
		raw, err := res.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpJSONGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		if raw != "" {
			out[i] = []byte(raw)
		}
	}
	return out, nil
}

// JSONSetMulti writes many documents in a single DoMulti round-trip. Items
// with a TTL get a PEXPIRE pipelined right after their JSON.SET.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(items))
	keys := make([]string, 0, len(items))
	ops := make([]string, 0, len(items))
	for _, item := range items {
		path := item.Path
		if path == "" {
			path = "$"
		}
		cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(item.Key).Args(path, string(item.Data)).Build())
		keys = append(keys, item.Key)
		ops = append(ops, db.OpJSONSet)
		if item.TTL > 0 {
			cmds = append(cmds, s.b().Pexpire().Key(item.Key).Milliseconds(item.TTL.Milliseconds()).Build())
			keys = append(keys, item.Key)
			ops = append(ops, db.OpPExpire)
		}
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: ops[i], Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
	}
	return nil
}
