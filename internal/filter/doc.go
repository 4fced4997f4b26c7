// Package filter narrows a catalog by a facet selection.
//
// Apply is a pure function: it takes the full catalog and the current
// selection and returns the matching records together with fresh choices
// for every facet, so a UI can rebuild all of its widgets from one call.
//
//	sel := filter.Selection{
//	    model.FacetModel:     {"A"},
//	    model.FacetPromptTag: {"x", "y"},
//	}
//	res := filter.Apply(cat, sel)
//	fmt.Println(len(res.Paths))
//	for _, c := range res.Facets[model.FacetSubFolder].Choices {
//	    fmt.Println(c.Label())
//	}
//
// Values of one scalar facet are alternatives (OR); prompt tags must all be
// present (AND); different facets are combined with AND.
//
// Sample caps and optionally shuffles the records shown at once.
package filter
