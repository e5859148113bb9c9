package store

import (
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// getIn descends into v along path. Mappings are traversed by key, lists by
// int index. A segment that does not resolve yields (nil, false).
func getIn(v any, path []any) (any, bool) {
	cur := v
	for _, seg := range path {
		switch c := cur.(type) {
		case codec.Map:
			next, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case map[any]any:
			next, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case codec.List:
			i, ok := listIndex(seg, len(c))
			if !ok {
				return nil, false
			}
			cur = c[i]
		case []any:
			i, ok := listIndex(seg, len(c))
			if !ok {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// assocIn replaces the sub-value at path inside v, creating intermediate
// mappings for segments that do not resolve. An empty path replaces v.
func assocIn(v any, path []any, newVal any) any {
	if len(path) == 0 {
		return newVal
	}
	seg := path[0]
	switch c := v.(type) {
	case codec.Map:
		out := make(codec.Map, len(c)+1)
		for k, val := range c {
			out[k] = val
		}
		out[seg] = assocIn(c[seg], path[1:], newVal)
		return out
	case map[any]any:
		return assocIn(codec.Map(c), path, newVal)
	case codec.List:
		if i, ok := listIndex(seg, len(c)); ok {
			out := make(codec.List, len(c))
			copy(out, c)
			out[i] = assocIn(c[i], path[1:], newVal)
			return out
		}
	case []any:
		return assocIn(codec.List(c), path, newVal)
	}
	// absent or non-associative intermediate: grow a fresh mapping
	return codec.Map{seg: assocIn(nil, path[1:], newVal)}
}

func listIndex(seg any, n int) (int, bool) {
	var i int
	switch x := seg.(type) {
	case int:
		i = x
	case int64:
		i = int(x)
	case int32:
		i = int(x)
	default:
		return 0, false
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
