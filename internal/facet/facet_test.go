package facet

import (
	"reflect"
	"testing"

	"github.com/handiism/sd-gallery/internal/model"
)

func record(sub, date, mdl string, tags ...string) *model.ImageRecord {
	r := model.NewRecord("/out/"+sub+"/"+date+"/img.png", sub, date)
	r.Model = mdl
	r.PromptTags = append(r.PromptTags, tags...)
	return r
}

func TestCounts(t *testing.T) {
	records := []*model.ImageRecord{
		record("batch1", "2024-01-01", "B", "x", "y"),
		record("batch1", "2024-01-01", "A", "x", "x"),
		record("extras", "", "A", "z"),
		record("batch2", "2024-01-02", "", "y"),
	}

	tests := []struct {
		name  string
		facet model.Facet
		want  []model.Choice
	}{
		{
			name:  "model ties keep first seen order",
			facet: model.FacetModel,
			want:  []model.Choice{{Value: "A", Count: 2}, {Value: "B", Count: 1}, {Value: "", Count: 1}},
		},
		{
			name:  "sub folder",
			facet: model.FacetSubFolder,
			want:  []model.Choice{{Value: "batch1", Count: 2}, {Value: "extras", Count: 1}, {Value: "batch2", Count: 1}},
		},
		{
			name:  "empty date counted",
			facet: model.FacetDate,
			want:  []model.Choice{{Value: "2024-01-01", Count: 2}, {Value: "", Count: 1}, {Value: "2024-01-02", Count: 1}},
		},
		{
			name:  "prompt tags count repeats",
			facet: model.FacetPromptTag,
			want:  []model.Choice{{Value: "x", Count: 3}, {Value: "y", Count: 2}, {Value: "z", Count: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Counts(records, tt.facet); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Counts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCounts_Empty(t *testing.T) {
	if got := Counts(nil, model.FacetModel); len(got) != 0 {
		t.Errorf("Counts(nil) = %v, want empty", got)
	}
}

func TestAll(t *testing.T) {
	records := []*model.ImageRecord{record("a", "d", "m", "t")}

	all := All(records)
	if len(all) != len(model.Facets) {
		t.Fatalf("All() has %d facets, want %d", len(all), len(model.Facets))
	}
	if got := all[model.FacetPromptTag]; len(got) != 1 || got[0].Value != "t" {
		t.Errorf("prompt choices = %v", got)
	}
}

func TestCountOf(t *testing.T) {
	records := []*model.ImageRecord{
		record("a", "d", "m", "x", "x"),
		record("a", "d", "n", "x"),
	}

	if got := CountOf(records, model.FacetPromptTag, "x"); got != 3 {
		t.Errorf("CountOf(x) = %d, want 3", got)
	}
	if got := CountOf(records, model.FacetModel, "m"); got != 1 {
		t.Errorf("CountOf(m) = %d, want 1", got)
	}
	if got := CountOf(records, model.FacetModel, "zzz"); got != 0 {
		t.Errorf("CountOf(zzz) = %d, want 0", got)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	tests := []struct {
		value string
		count int
		label string
	}{
		{"anyhentai_20", 42, "anyhentai_20 | 42"},
		{"", 3, "(none) | 3"},
		{"a | b", 1, "a | b | 1"},
		{"masterpiece", 0, "masterpiece | 0"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			label := FormatChoice(tt.value, tt.count)
			if label != tt.label {
				t.Errorf("FormatChoice() = %q, want %q", label, tt.label)
			}
			value, ok := ParseLabel(label)
			if !ok || value != tt.value {
				t.Errorf("ParseLabel(%q) = (%q, %v), want (%q, true)", label, value, ok, tt.value)
			}
		})
	}
}

func TestParseLabel_Invalid(t *testing.T) {
	for _, label := range []string{"", "no separator", "value | many", "value | -1", "value |3"} {
		if _, ok := ParseLabel(label); ok {
			t.Errorf("ParseLabel(%q) should fail", label)
		}
	}
}
