package ports

import "github.com/pranshuparmar/ports/pkg/model"

// Set is a set of records by structural identity.
type Set map[model.RecordKey]struct{}

func NewSet(records []model.PortRecord) Set {
	s := make(Set, len(records))
	for _, r := range records {
		s[r.Key()] = struct{}{}
	}
	return s
}

func (s Set) Has(r model.PortRecord) bool {
	_, ok := s[r.Key()]
	return ok
}

// Added returns the records of current that were not in previous.
func Added(previous Set, current []model.PortRecord) Set {
	out := make(Set)
	for _, r := range current {
		if !previous.Has(r) {
			out[r.Key()] = struct{}{}
		}
	}
	return out
}

// Removed returns the keys of previous that are no longer present.
func Removed(previous Set, current []model.PortRecord) []model.RecordKey {
	now := NewSet(current)
	var gone []model.RecordKey
	for k := range previous {
		if _, ok := now[k]; !ok {
			gone = append(gone, k)
		}
	}
	return gone
}
