package model

// Catalog is the ordered set of records built from one outputs folder.
//
// Records are kept in discovery order. A catalog is treated as an immutable
// snapshot: filtering produces a new Catalog sharing the same records.
type Catalog struct {
	// Root is the absolute directory the catalog was built from.
	Root string

	Records []*ImageRecord
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Paths returns the record paths in catalog order.
func (c *Catalog) Paths() []string {
	if c == nil {
		return nil
	}
	paths := make([]string, len(c.Records))
	for i, r := range c.Records {
		paths[i] = r.Path
	}
	return paths
}

// Find returns the record stored under path.
func (c *Catalog) Find(path string) (*ImageRecord, bool) {
	if c == nil {
		return nil, false
	}
	for _, r := range c.Records {
		if r.Path == path {
			return r, true
		}
	}
	return nil, false
}

// Subset returns a catalog with the same root holding records.
func (c *Catalog) Subset(records []*ImageRecord) *Catalog {
	root := ""
	if c != nil {
		root = c.Root
	}
	return &Catalog{Root: root, Records: records}
}
