package tableview

// NextFacet returns the facet after cur, wrapping to the first. An unknown
// cur yields the first facet.
func NextFacet(facets []string, cur string) string {
	return stepFacet(facets, cur, 1)
}

// PrevFacet returns the facet before cur, wrapping to the last.
func PrevFacet(facets []string, cur string) string {
	return stepFacet(facets, cur, -1)
}

func stepFacet(facets []string, cur string, step int) string {
	n := len(facets)
	if n == 0 {
		return cur
	}
	for i, f := range facets {
		if f == cur {
			return facets[((i+step)%n+n)%n]
		}
	}
	return facets[0]
}
