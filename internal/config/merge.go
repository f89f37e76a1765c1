package config

import (
	"sort"
	"strings"
)

// DeepMerge folds src into dst and returns dst. Nested maps present on
// both sides merge key by key; any other src value replaces dst's.
// A nil dst is allocated.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = mergeValue(dst[k], v)
	}
	return dst
}

func mergeValue(old, incoming any) any {
	om, ok1 := old.(map[string]any)
	im, ok2 := incoming.(map[string]any)
	if ok1 && ok2 {
		return DeepMerge(om, im)
	}
	return incoming
}

// Clone returns a deep copy of src with dotted keys expanded, so
// {"eventBus.failFast": true} and {"eventBus": {"failFast": true}} clone
// to the same tree. Dotted keys are applied last and win on conflict.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	out := make(map[string]any, len(src))
	var dotted []string
	for k, v := range src {
		if strings.Contains(k, ".") {
			dotted = append(dotted, k)
		} else {
			out[k] = cloneAny(v)
		}
	}

	sort.Strings(dotted)
	for _, k := range dotted {
		putPath(out, strings.Split(k, "."), cloneAny(src[k]))
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		return cloneList(t)
	}
	return v
}

func cloneList(src []any) []any {
	if src == nil {
		return nil
	}
	out := make([]any, 0, len(src))
	for _, v := range src {
		out = append(out, cloneAny(v))
	}
	return out
}

// putPath stores v under the nested key segs, creating or replacing
// intermediate maps as it goes.
func putPath(m map[string]any, segs []string, v any) {
	for _, s := range segs[:len(segs)-1] {
		child, ok := m[s].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[s] = child
		}
		m = child
	}
	last := segs[len(segs)-1]
	m[last] = mergeValue(m[last], v)
}
