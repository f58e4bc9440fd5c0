package domain

import "sort"

// FieldSet maps recognized field names to extracted values for a single
// snapshot type derived from one source file.
type FieldSet map[string]any

// Clone returns a shallow copy of the field set.
func (fs FieldSet) Clone() FieldSet {
	if fs == nil {
		return nil
	}
	out := make(FieldSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// Names returns the field names present in the set, sorted.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for k := range fs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Coverage reports which of a type's recognized fields a FieldSet filled.
// It is accounting only and never used to reject a snapshot.
type Coverage struct {
	Filled  []string `json:"filled_fields"`
	Missing []string `json:"missing_fields"`
}

// MeasureCoverage computes coverage of fs against the recognized field
// names of its snapshot type. A field counts as filled when present and
// non-empty (nil values and empty lists are missing).
func MeasureCoverage(fs FieldSet, recognized []string) Coverage {
	cov := Coverage{
		Filled:  make([]string, 0, len(recognized)),
		Missing: make([]string, 0),
	}
	for _, name := range recognized {
		if isFilled(fs[name]) {
			cov.Filled = append(cov.Filled, name)
		} else {
			cov.Missing = append(cov.Missing, name)
		}
	}
	return cov
}

func isFilled(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []string:
		return len(val) > 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// TypedFieldSet pairs a snapshot type with the fields a file produced for
// it, plus the coverage measured against the schema. The Field Mapper
// yields zero or more of these per file.
type TypedFieldSet struct {
	Type     SnapshotType
	Fields   FieldSet
	Coverage Coverage
}
