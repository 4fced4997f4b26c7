package filter

import (
	"math/rand/v2"
	"slices"

	"github.com/handiism/sd-gallery/internal/facet"
	"github.com/handiism/sd-gallery/internal/model"
)

// Selection maps each facet to the bare values picked for it.
//
// A facet with no values places no constraint on the result.
type Selection map[model.Facet][]string

// Clone returns a deep copy of s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for f, values := range s {
		out[f] = slices.Clone(values)
	}
	return out
}

// Toggle adds value to the selection of f, or removes it if already present.
func (s Selection) Toggle(f model.Facet, value string) {
	if i := slices.Index(s[f], value); i != -1 {
		s[f] = slices.Delete(s[f], i, i+1)
		return
	}
	s[f] = append(s[f], value)
}

// Has reports whether value is selected for f.
func (s Selection) Has(f model.Facet, value string) bool {
	return slices.Contains(s[f], value)
}

// Empty reports whether no facet constrains the result.
func (s Selection) Empty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// FacetState is the re-validated choice list of one facet.
type FacetState struct {
	// Choices lists every value present in the filtered records.
	Choices []model.Choice

	// Selected lists the selected values with their count in the filtered
	// records. A count may be zero.
	Selected []model.Choice
}

// Result is the outcome of applying a Selection to a Catalog.
type Result struct {
	Catalog *model.Catalog
	Paths   []string
	Facets  map[model.Facet]FacetState
}

// Apply filters catalog by sel and recomputes the choices of every facet.
//
// Scalar facets match when the record's value is any of the selected values.
// The prompt tag facet matches when the record carries all selected tags.
// Facets combine with AND. The input catalog is never modified.
func Apply(catalog *model.Catalog, sel Selection) Result {
	var records []*model.ImageRecord
	if catalog != nil {
		records = make([]*model.ImageRecord, 0, len(catalog.Records))
		for _, r := range catalog.Records {
			if Matches(r, sel) {
				records = append(records, r)
			}
		}
	}

	filtered := catalog.Subset(records)
	result := Result{
		Catalog: filtered,
		Paths:   filtered.Paths(),
		Facets:  make(map[model.Facet]FacetState, len(model.Facets)),
	}

	for _, f := range model.Facets {
		state := FacetState{Choices: facet.Counts(records, f)}
		for _, v := range dedupe(sel[f]) {
			state.Selected = append(state.Selected, model.Choice{Value: v, Count: facet.CountOf(records, f, v)})
		}
		result.Facets[f] = state
	}

	return result
}

// Matches reports whether r satisfies every facet of sel.
func Matches(r *model.ImageRecord, sel Selection) bool {
	for f, values := range sel {
		if len(values) == 0 {
			continue
		}
		if f.MultiValued() {
			if !r.HasTags(values) {
				return false
			}
			continue
		}
		own := f.Values(r)
		if len(own) == 0 || !slices.Contains(values, own[0]) {
			return false
		}
	}
	return true
}

// Sample returns at most limit records for display.
//
// When rng is non-nil the records are shuffled first, otherwise catalog
// order is kept. A limit of zero or less means no cap. The input slice is
// not modified.
func Sample(records []*model.ImageRecord, limit int, rng *rand.Rand) []*model.ImageRecord {
	out := slices.Clone(records)
	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
