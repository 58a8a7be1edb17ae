package denoise

import (
	"github.com/seqsense/pcdenoise/triangulation"
	"github.com/unixpickle/model3d/model3d"
)

// Neighbors returns the facets around the facet containing v.
// Degree 0 gives the containing facet and its adjacent facets, and each
// additional degree expands the set by one more hop of adjacency.
// Facets are listed in discovery order without duplication.
// Nil is returned if v can not be located.
func Neighbors(t triangulation.Triangulation, v model3d.Coord3D, degree int) []int {
	f, ok := t.LocateFacet(v)
	if !ok {
		return nil
	}
	return expand(t, f, degree)
}

func expand(t triangulation.Triangulation, f0, degree int) []int {
	visited := map[int]struct{}{f0: {}}
	facets := []int{f0}
	frontier := []int{f0}
	for hop := 0; hop <= degree && len(frontier) > 0; hop++ {
		var next []int
		for _, f := range frontier {
			for _, g := range t.FacetAdjacency(f) {
				if g == triangulation.None {
					continue
				}
				if _, ok := visited[g]; ok {
					continue
				}
				visited[g] = struct{}{}
				next = append(next, g)
			}
		}
		facets = append(facets, next...)
		frontier = next
	}
	return facets
}
