package facet

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/handiism/sd-gallery/internal/model"
)

// Counts returns the distinct values of f in records with their counts.
//
// Choices are sorted by descending count; equal counts keep the order in
// which the values were first seen. Prompt tags count every occurrence, so a
// tag repeated inside one prompt counts more than once. Scalar facets count
// one value per record, including the empty value.
func Counts(records []*model.ImageRecord, f model.Facet) []model.Choice {
	index := make(map[string]int)
	var choices []model.Choice

	for _, r := range records {
		for _, v := range f.Values(r) {
			if i, ok := index[v]; ok {
				choices[i].Count++
				continue
			}
			index[v] = len(choices)
			choices = append(choices, model.Choice{Value: v, Count: 1})
		}
	}

	slices.SortStableFunc(choices, func(a, b model.Choice) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return choices
}

// All returns the choices of every facet.
func All(records []*model.ImageRecord) map[model.Facet][]model.Choice {
	all := make(map[model.Facet][]model.Choice, len(model.Facets))
	for _, f := range model.Facets {
		all[f] = Counts(records, f)
	}
	return all
}

// CountOf returns how often value occurs for f in records.
func CountOf(records []*model.ImageRecord, f model.Facet, value string) int {
	n := 0
	for _, r := range records {
		for _, v := range f.Values(r) {
			if v == value {
				n++
			}
		}
	}
	return n
}

// FormatChoice renders value and count as a choice label.
func FormatChoice(value string, count int) string {
	return model.Choice{Value: value, Count: count}.Label()
}

// ParseLabel recovers the value from a label produced by FormatChoice.
//
// The label is split at the last separator and the suffix must be a count,
// so values that themselves contain " | " survive. The empty-value
// placeholder maps back to "".
func ParseLabel(label string) (string, bool) {
	i := strings.LastIndex(label, model.ChoiceSeparator)
	if i == -1 {
		return "", false
	}
	count, err := strconv.Atoi(label[i+len(model.ChoiceSeparator):])
	if err != nil || count < 0 {
		return "", false
	}
	value := label[:i]
	if value == model.EmptyValueLabel {
		value = ""
	}
	return value, true
}
