package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFacet is returned when a facet name cannot be resolved.
var ErrUnknownFacet = errors.New("unknown facet")

// ChoiceSeparator separates a facet value from its count in a choice label.
const ChoiceSeparator = " | "

// EmptyValueLabel is displayed in place of an empty facet value.
const EmptyValueLabel = "(none)"

// Facet identifies one filterable catalog column.
type Facet int

const (
	// FacetSubFolder filters on the output sub-folder (txt2img-images, extras, ...).
	FacetSubFolder Facet = iota

	// FacetDate filters on the date folder.
	FacetDate

	// FacetModel filters on the checkpoint name.
	FacetModel

	// FacetPromptTag filters on prompt tags. It is the only multi-valued facet.
	FacetPromptTag
)

// Facets lists every facet in display order.
var Facets = []Facet{FacetSubFolder, FacetDate, FacetModel, FacetPromptTag}

// String returns the column name of the facet.
func (f Facet) String() string {
	switch f {
	case FacetSubFolder:
		return "sub_folder"
	case FacetDate:
		return "date"
	case FacetModel:
		return "model"
	case FacetPromptTag:
		return "prompt"
	default:
		return fmt.Sprintf("facet(%d)", int(f))
	}
}

// Label returns the display name of the facet.
func (f Facet) Label() string {
	switch f {
	case FacetSubFolder:
		return "Folder"
	case FacetDate:
		return "Date"
	case FacetModel:
		return "Model"
	case FacetPromptTag:
		return "Prompts"
	default:
		return f.String()
	}
}

// MultiValued reports whether a row can hold several values of the facet.
func (f Facet) MultiValued() bool {
	return f == FacetPromptTag
}

// Values returns the values r holds for the facet.
func (f Facet) Values(r *ImageRecord) []string {
	switch f {
	case FacetSubFolder:
		return []string{r.SubFolder}
	case FacetDate:
		return []string{r.Date}
	case FacetModel:
		return []string{r.Model}
	case FacetPromptTag:
		return r.PromptTags
	default:
		return nil
	}
}

// ParseFacet resolves a column name or display name, case-insensitively.
func ParseFacet(name string) (Facet, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Facets {
		if n == f.String() || n == strings.ToLower(f.Label()) {
			return f, nil
		}
	}
	switch n {
	case "folder", "subfolder":
		return FacetSubFolder, nil
	case "tag", "tags", "prompt_tag":
		return FacetPromptTag, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFacet, name)
}

// Choice is a selectable facet value with its match count.
type Choice struct {
	Value string
	Count int
}

// Label renders the choice as "<value> | <count>".
func (c Choice) Label() string {
	v := c.Value
	if v == "" {
		v = EmptyValueLabel
	}
	return fmt.Sprintf("%s%s%d", v, ChoiceSeparator, c.Count)
}
