package denoise

import (
	"math"
	"sort"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
	"github.com/unixpickle/model3d/model3d"
)

// Normal estimates the unit normal at v by averaging the normals of the
// facets returned by Neighbors. The sorted indices of the points referenced
// by those facets are returned together with the normal.
func Normal(t triangulation.Triangulation, ra pcd.Vec3RandomAccessor, v model3d.Coord3D, degree int) (model3d.Coord3D, []int, error) {
	return facetNormal(t, ra, Neighbors(t, v, degree))
}

func facetNormal(t triangulation.Triangulation, ra pcd.Vec3RandomAccessor, facets []int) (model3d.Coord3D, []int, error) {
	if len(facets) == 0 {
		return model3d.Coord3D{}, nil, ErrUndefinedNormal
	}
	var sum model3d.Coord3D
	seen := make(map[int]struct{}, len(facets)+2)
	indices := make([]int, 0, len(facets)+2)
	for _, f := range facets {
		fv := t.FacetVertices(f)
		p0 := ra.Vec3At(fv[0])
		sum = sum.Add(ra.Vec3At(fv[1]).Sub(p0).Cross(ra.Vec3At(fv[2]).Sub(p0)))
		for _, i := range fv {
			if _, ok := seen[i]; !ok {
				seen[i] = struct{}{}
				indices = append(indices, i)
			}
		}
	}
	avg := sum.Scale(1 / float64(len(facets)))
	norm := avg.Norm()
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return model3d.Coord3D{}, nil, ErrUndefinedNormal
	}
	sort.Ints(indices)
	return avg.Scale(1 / norm), indices, nil
}
