// Package triangulation builds surface triangulations of point clouds.
//
// The denoising code only depends on the Triangulation and Triangulator
// interfaces; Delaunay is the implementation backed by an external
// Delaunay library.
package triangulation

import (
	"errors"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/unixpickle/model3d/model3d"
)

// None marks a missing neighbor facet.
const None = -1

var (
	ErrTooFewPoints = errors.New("at least 3 points are required")
	ErrDegenerate   = errors.New("degenerate point set")
)

// Triangulation is an immutable set of facets over a point cloud.
// Facet vertices are indices into the triangulated point cloud.
type Triangulation interface {
	NumFacets() int
	FacetVertices(f int) [3]int
	// FacetAdjacency returns the facets sharing an edge with f, or None.
	FacetAdjacency(f int) [3]int
	// LocateFacet returns the facet containing p.
	LocateFacet(p model3d.Coord3D) (int, bool)
}

type Triangulator interface {
	Triangulate(pcd.Vec3RandomAccessor) (Triangulation, error)
}

// Mesh converts the facets of t to a mesh, e.g. to be saved as STL.
func Mesh(ra pcd.Vec3RandomAccessor, t Triangulation) *model3d.Mesh {
	tris := make([]*model3d.Triangle, 0, t.NumFacets())
	for f := 0; f < t.NumFacets(); f++ {
		v := t.FacetVertices(f)
		tris = append(tris, &model3d.Triangle{ra.Vec3At(v[0]), ra.Vec3At(v[1]), ra.Vec3At(v[2])})
	}
	return model3d.NewMeshTriangles(tris)
}
