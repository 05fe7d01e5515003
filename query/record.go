package query

import (
	"strings"

	"github.com/spf13/cast"
)

// Record is one decoded input row.
type Record map[string]any

// Get returns the value at path. Dotted paths descend into nested objects;
// a key containing dots is matched verbatim first.
func (r Record) Get(path string) (any, bool) {
	if v, ok := r[path]; ok {
		return v, true
	}
	head, rest, ok := strings.Cut(path, ".")
	if !ok {
		return nil, false
	}
	child, ok := r[head]
	if !ok {
		return nil, false
	}
	switch nested := child.(type) {
	case Record:
		return nested.Get(rest)
	case map[string]any:
		return Record(nested).Get(rest)
	}
	nested, err := cast.ToStringMapE(child)
	if err != nil {
		return nil, false
	}
	return Record(nested).Get(rest)
}

// Pick returns a new record holding the fields present in r, keyed by the
// requested path.
func (r Record) Pick(fields []string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r.Get(f); ok {
			out[f] = v
		}
	}
	return out
}
