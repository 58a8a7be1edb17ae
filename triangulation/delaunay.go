package triangulation

import (
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/unixpickle/model3d/model3d"
)

// barycentricEpsilon is the tolerance of the point-in-facet test in the
// parameter plane.
const barycentricEpsilon = 1e-9

// flatEpsilon is the minimum ratio of the facet area to the squared extent
// of a valid triangulation.
const flatEpsilon = 1e-12

// sliverRatio is the minimum ratio of a facet height to its longest edge
// for facets on the boundary.
const sliverRatio = 1e-2

// Delaunay triangulates points by their Delaunay triangulation in a 2D
// parameter plane.
type Delaunay struct {
	Projection Projection
}

func (d *Delaunay) Triangulate(ra pcd.Vec3RandomAccessor) (Triangulation, error) {
	n := ra.Len()
	if n < 3 {
		return nil, ErrTooFewPoints
	}
	pl, err := newPlane(ra, d.Projection)
	if err != nil {
		return nil, err
	}

	m := &mesh{
		plane:    pl,
		points:   make([]delaunay.Point, n),
		incident: make([]int, n),
		byCoord:  make(map[model3d.Coord3D]int, n),
	}
	for i := range m.points {
		m.points[i] = pl.project(ra.Vec3At(i))
		m.incident[i] = None
	}

	dt, err := delaunay.Triangulate(m.points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if len(dt.Triangles) == 0 {
		return nil, fmt.Errorf("%w: no facet", ErrDegenerate)
	}

	if isFlat(m.points, dt.Triangles) {
		return nil, fmt.Errorf("%w: collinear points", ErrDegenerate)
	}

	keep := peelSlivers(m.points, dt.Triangles, dt.Halfedges)
	index := make([]int, len(keep))
	for f, ok := range keep {
		index[f] = None
		if ok {
			index[f] = len(m.facets)
			m.facets = append(m.facets, [3]int{})
		}
	}
	if len(m.facets) == 0 {
		return nil, fmt.Errorf("%w: no facet", ErrDegenerate)
	}
	m.adjacency = make([][3]int, len(m.facets))
	for f, nf := range index {
		if nf == None {
			continue
		}
		for k := 0; k < 3; k++ {
			e := 3*f + k
			v := dt.Triangles[e]
			m.facets[nf][k] = v
			if m.incident[v] == None {
				m.incident[v] = nf
			}
			m.adjacency[nf][k] = None
			if opp := dt.Halfedges[e]; opp >= 0 {
				m.adjacency[nf][k] = index[opp/3]
			}
		}
	}
	// Points skipped by the library as duplicates are located through
	// the first used point at the same position.
	for i := 0; i < n; i++ {
		if m.incident[i] == None {
			continue
		}
		p := ra.Vec3At(i)
		if _, ok := m.byCoord[p]; !ok {
			m.byCoord[p] = i
		}
	}
	return m, nil
}

type mesh struct {
	plane     *plane
	points    []delaunay.Point
	facets    [][3]int
	adjacency [][3]int
	incident  []int
	byCoord   map[model3d.Coord3D]int
}

func (m *mesh) NumFacets() int {
	return len(m.facets)
}

func (m *mesh) FacetVertices(f int) [3]int {
	return m.facets[f]
}

func (m *mesh) FacetAdjacency(f int) [3]int {
	return m.adjacency[f]
}

// LocateFacet resolves input points to their lowest indexed incident facet.
// Other points are searched in the parameter plane.
func (m *mesh) LocateFacet(p model3d.Coord3D) (int, bool) {
	if i, ok := m.byCoord[p]; ok {
		return m.incident[i], true
	}
	q := m.plane.project(p)
	for f := range m.facets {
		if m.contains(f, q) {
			return f, true
		}
	}
	return None, false
}

func (m *mesh) contains(f int, p delaunay.Point) bool {
	t := m.facets[f]
	a, b, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]

	denom := cross2(b.X-a.X, b.Y-a.Y, c.X-a.X, c.Y-a.Y)
	if denom == 0 {
		return false
	}
	wb := cross2(p.X-a.X, p.Y-a.Y, c.X-a.X, c.Y-a.Y) / denom
	wc := cross2(b.X-a.X, b.Y-a.Y, p.X-a.X, p.Y-a.Y) / denom
	wa := 1 - wb - wc
	return wa >= -barycentricEpsilon && wb >= -barycentricEpsilon && wc >= -barycentricEpsilon
}

// isFlat reports whether the facets cover no area compared to the extent
// of the points, which happens for (nearly) collinear input.
func isFlat(points []delaunay.Point, triangles []int) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	diagSq := (maxX-minX)*(maxX-minX) + (maxY-minY)*(maxY-minY)

	var area float64
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := points[triangles[i]], points[triangles[i+1]], points[triangles[i+2]]
		area += math.Abs(cross2(b.X-a.X, b.Y-a.Y, c.X-a.X, c.Y-a.Y))
	}
	return area <= flatEpsilon*diagSq
}

// peelSlivers returns the facets to keep after removing the needle shaped
// facets reachable from the hull. Delaunay fills the concave parts of a
// projected boundary with such facets; their normals lie in the parameter
// plane.
func peelSlivers(points []delaunay.Point, triangles, halfedges []int) []bool {
	nf := len(triangles) / 3
	keep := make([]bool, nf)
	var queue []int
	for f := range keep {
		keep[f] = true
		for k := 0; k < 3; k++ {
			if halfedges[3*f+k] < 0 {
				queue = append(queue, f)
				break
			}
		}
	}
	for len(queue) > 0 {
		var f int
		f, queue = queue[0], queue[1:]
		if !keep[f] || !isSliver(points, triangles[3*f:3*f+3]) {
			continue
		}
		keep[f] = false
		for k := 0; k < 3; k++ {
			if opp := halfedges[3*f+k]; opp >= 0 && keep[opp/3] {
				queue = append(queue, opp/3)
			}
		}
	}
	return keep
}

// isSliver reports whether the height of the facet is below sliverRatio
// times its longest edge.
func isSliver(points []delaunay.Point, t []int) bool {
	a, b, c := points[t[0]], points[t[1]], points[t[2]]
	area2 := math.Abs(cross2(b.X-a.X, b.Y-a.Y, c.X-a.X, c.Y-a.Y))
	longest := math.Max(distSq(a, b), math.Max(distSq(b, c), distSq(c, a)))
	return area2 <= sliverRatio*longest
}

func distSq(a, b delaunay.Point) float64 {
	return (a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y)
}

func cross2(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}
