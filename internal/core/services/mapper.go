package services

import (
	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// FieldMapper routes extracted field identifiers into the snapshot types
// that declare them. Fields no type recognizes are dropped with a log
// line; a type that ends up with no filled fields yields no field set.
type FieldMapper struct {
	schema *domain.Schema
	owner  map[string]domain.SnapshotType
	logger zerolog.Logger
}

// NewFieldMapper indexes the schema's fields by owning type. The schema
// guarantees per-type uniqueness; cross-type duplicates keep the first
// declaring type, matching schema declaration order.
func NewFieldMapper(s *domain.Schema, logger zerolog.Logger) *FieldMapper {
	owner := make(map[string]domain.SnapshotType)
	for _, t := range s.Types() {
		for _, name := range s.RecognizedFields(t) {
			if _, taken := owner[name]; !taken {
				owner[name] = t
			}
		}
	}
	return &FieldMapper{
		schema: s,
		owner:  owner,
		logger: logger.With().Str("component", "field_mapper").Logger(),
	}
}

// Map folds one or more parse results for a single file into typed field
// sets. Results are merged first (see mergeData), then each field lands in
// its owning type. Output order follows schema declaration order.
func (m *FieldMapper) Map(rel string, results ...*domain.ParseResult) []domain.TypedFieldSet {
	data := mergeData(results)

	byType := make(map[domain.SnapshotType]domain.FieldSet)
	for name, value := range data {
		t, recognized := m.owner[name]
		if !recognized {
			m.logger.Debug().
				Str("file", rel).
				Str("field", name).
				Msg("dropping unrecognized field")
			continue
		}
		fs, ok := byType[t]
		if !ok {
			fs = make(domain.FieldSet)
			byType[t] = fs
		}
		fs[name] = value
	}

	out := make([]domain.TypedFieldSet, 0, len(byType))
	for _, t := range m.schema.Types() {
		fs, ok := byType[t]
		if !ok || !hasFilledField(fs) {
			continue
		}
		out = append(out, domain.TypedFieldSet{
			Type:     t,
			Fields:   fs,
			Coverage: domain.MeasureCoverage(fs, m.schema.RecognizedFields(t)),
		})
	}
	return out
}

// mergeData unions the data maps of several parse results for one file.
// List-valued fields accumulate across results in input order with
// duplicates removed; scalar fields keep the first non-empty value.
func mergeData(results []*domain.ParseResult) map[string]any {
	merged := make(map[string]any)
	for _, res := range results {
		if res == nil {
			continue
		}
		for name, value := range res.Data {
			existing, present := merged[name]
			if !present {
				merged[name] = value
				continue
			}
			if a, b, ok := asStringLists(existing, value); ok {
				merged[name] = unionStrings(a, b)
			}
			// scalar already set: first non-empty wins
		}
	}
	return merged
}

func asStringLists(a, b any) ([]string, []string, bool) {
	la, oka := toStringList(a)
	lb, okb := toStringList(b)
	return la, lb, oka && okb
}

func toStringList(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func hasFilledField(fs domain.FieldSet) bool {
	cov := domain.MeasureCoverage(fs, fs.Names())
	return len(cov.Filled) > 0
}
