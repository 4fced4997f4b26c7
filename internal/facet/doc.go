// Package facet computes the selectable values of each catalog facet.
//
// A facet is one filterable dimension of a record: sub-folder, date, model
// or prompt tag. Counts lists its distinct values as model.Choice, most
// frequent first:
//
//	choices := facet.Counts(cat.Records, model.FacetModel)
//	for _, c := range choices {
//	    fmt.Println(c.Label()) // "anyhentai_20 | 42"
//	}
//
// Labels are for display only. Filters are keyed by Choice.Value; ParseLabel
// exists for callers that only kept the rendered label.
package facet
