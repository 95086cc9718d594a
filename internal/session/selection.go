package session

import "sort"

// Selection is an immutable set of enabled category keys. Toggle returns a
// new value; the receiver is never modified.
type Selection struct {
	keys map[string]struct{}
}

func NewSelection(keys ...string) Selection {
	s := Selection{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s Selection) Len() int { return len(s.keys) }

// Toggle is the symmetric difference of s and {key}.
func (s Selection) Toggle(key string) Selection {
	next := s.clone()
	if _, ok := next.keys[key]; ok {
		delete(next.keys, key)
	} else {
		next.keys[key] = struct{}{}
	}
	return next
}

// Ordered lists the selected keys following order, then any keys not in
// order sorted lexically. The result is never nil so that an empty selection
// encodes as [] rather than null.
func (s Selection) Ordered(order []string) []string {
	out := make([]string, 0, len(s.keys))
	seen := make(map[string]struct{}, len(s.keys))
	for _, k := range order {
		if _, ok := s.keys[k]; ok {
			if _, dup := seen[k]; !dup {
				out = append(out, k)
				seen[k] = struct{}{}
			}
		}
	}
	var extra []string
	for k := range s.keys {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (s Selection) clone() Selection {
	next := Selection{keys: make(map[string]struct{}, len(s.keys)+1)}
	for k := range s.keys {
		next.keys[k] = struct{}{}
	}
	return next
}
