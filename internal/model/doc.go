// Package model defines the core data structures shared by the catalog
// builder, the facet index and the filter engine.
//
// # ImageRecord
//
// ImageRecord is one row of the catalog, built from a single image file:
//
//	rec := model.NewRecord("/outputs/txt2img/2024-01-01/00001.png", "txt2img", "2024-01-01")
//	fmt.Println(rec.Model, rec.PromptTags)
//
// Records are always complete. When an image carries no generation data, or the
// data cannot be parsed, the record keeps its path-derived fields and every other
// field stays at its zero value.
//
// # GenerationInfo
//
// GenerationInfo is the ordered key/value mapping recovered from the structured
// tail of an annotation ("Steps: 20, Sampler: Euler a, ..."):
//
//	info := model.NewGenerationInfo()
//	info.Set("Steps", "20")
//	info.Value("Steps") // "20"
//
// # Facets and choices
//
// Facet names one of the four filterable columns (folder, date, model, prompt tag).
// Choice pairs a bare facet value with its count; Label renders the display string
// "<value> | <count>", which is never parsed back into a filter key.
package model
