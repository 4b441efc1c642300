package assembler

import (
	"strings"

	"github.com/kailas-cloud/searchinto/internal/domain"
)

// setPath binds value at a dotted path below root, creating intermediate objects.
// A key never holds a scalar and an object at once: a write that would mix them
// fails with a PathConflictError. Objects written over objects are merged.
func setPath(root map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	node := root
	for i, seg := range segments[:len(segments)-1] {
		next, exists := node[seg]
		if !exists || next == nil {
			child := make(map[string]any)
			node[seg] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return &domain.PathConflictError{Path: strings.Join(segments[:i+1], ".")}
		}
		node = child
	}
	return setLeaf(node, segments[len(segments)-1], path, value)
}

func setLeaf(node map[string]any, key, path string, value any) error {
	existing, exists := node[key]
	if value == nil {
		if !exists {
			node[key] = nil
		}
		return nil
	}
	newObj, newIsObj := value.(map[string]any)
	if !exists || existing == nil {
		if newIsObj {
			value = copyTree(newObj)
		}
		node[key] = value
		return nil
	}

	oldObj, oldIsObj := existing.(map[string]any)
	switch {
	case oldIsObj && newIsObj:
		for k, v := range newObj {
			if err := setLeaf(oldObj, k, path+"."+k, v); err != nil {
				return err
			}
		}
		return nil
	case oldIsObj != newIsObj:
		return &domain.PathConflictError{Path: path}
	default:
		node[key] = value
		return nil
	}
}

// copyTree deep-copies nested objects and arrays so request trees never alias row values.
func copyTree(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyTree(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = copyValue(x[i])
		}
		return out
	default:
		return v
	}
}
