package services

import (
	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// Flattener expands one level of nested objects into prefixed top-level keys.
//
// For a nested field "owner" holding {"id": "0x1"} the output carries
// "owner_id". Every other field k becomes "<prefix>_k".
type Flattener struct {
	prefix string
	nested map[string]struct{}
}

// NewFlattener creates a flattener for records of one type.
func NewFlattener(prefix string, nested ...string) *Flattener {
	f := &Flattener{
		prefix: prefix,
		nested: make(map[string]struct{}, len(nested)),
	}
	for _, n := range nested {
		f.nested[n] = struct{}{}
	}
	return f
}

// Flatten converts raw into a flat record.
// A declared nested field whose value is not an object is a contract
// violation and returns a *domain.FlattenError.
func (f *Flattener) Flatten(raw domain.RawRecord) (domain.FlatRecord, error) {
	out := make(domain.FlatRecord, len(raw))
	for key, value := range raw {
		if _, ok := f.nested[key]; !ok {
			out[f.key(key)] = value
			continue
		}

		inner, ok := value.(map[string]any)
		if !ok {
			return nil, &domain.FlattenError{Field: key, Value: value}
		}
		for innerKey, innerValue := range inner {
			out[key+"_"+innerKey] = innerValue
		}
	}
	return out, nil
}

func (f *Flattener) key(k string) string {
	if f.prefix == "" {
		return k
	}
	return f.prefix + "_" + k
}
