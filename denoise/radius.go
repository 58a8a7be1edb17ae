package denoise

import (
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
	"github.com/unixpickle/model3d/model3d"
)

// IsolatedSpacing is returned by LocalSpacing when no neighbor point is
// found at a positive distance.
const IsolatedSpacing = 1e10

// LocalSpacing returns the distance from v to the closest distinct point of
// the facets adjacent to the facet containing v. It is used as sigma_c.
func LocalSpacing(t triangulation.Triangulation, ra pcd.Vec3RandomAccessor, v model3d.Coord3D) float64 {
	f, ok := t.LocateFacet(v)
	if !ok {
		return IsolatedSpacing
	}
	return spacingAround(t, ra, f, v)
}

func spacingAround(t triangulation.Triangulation, ra pcd.Vec3RandomAccessor, f int, v model3d.Coord3D) float64 {
	min := IsolatedSpacing
	for _, g := range t.FacetAdjacency(f) {
		if g == triangulation.None {
			continue
		}
		for _, i := range t.FacetVertices(g) {
			if d := ra.Vec3At(i).Dist(v); d > 0 && d < min {
				min = d
			}
		}
	}
	return min
}
