package sac

import (
	"math"

	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
)

const epsilon = 1e-12

type planeModel struct {
	ra        pcd.Vec3RandomAccessor
	threshold float64
}

// NewPlaneModel returns a plane model scored by the number of points closer
// than threshold.
func NewPlaneModel(ra pcd.Vec3RandomAccessor, threshold float64) Model {
	return &planeModel{ra: ra, threshold: threshold}
}

func (planeModel) NumRange() (min, max int) {
	return 3, 3
}

func (m *planeModel) Fit(ids []int) (ModelCoefficients, bool) {
	if len(ids) != 3 {
		return nil, false
	}
	p0, p1, p2 := m.ra.Vec3At(ids[0]), m.ra.Vec3At(ids[1]), m.ra.Vec3At(ids[2])
	norm := p1.Sub(p0).Cross(p2.Sub(p0))
	l := norm.Norm()
	if l < epsilon || math.IsNaN(l) {
		return nil, false
	}
	// Plane equation: norm.Dot(p) = d
	norm = norm.Scale(1 / l)
	return &PlaneCoefficients{
		model:  m,
		Normal: norm,
		D:      norm.Dot(p0),
	}, true
}

type PlaneCoefficients struct {
	model *planeModel

	Normal model3d.Coord3D
	D      float64
}

func (c *PlaneCoefficients) Score() int {
	var cnt int
	for i := 0; i < c.model.ra.Len(); i++ {
		if c.IsIn(c.model.ra.Vec3At(i), c.model.threshold) {
			cnt++
		}
	}
	return cnt
}

func (c *PlaneCoefficients) Inliers(d float64) []int {
	n := c.model.ra.Len()
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if c.IsIn(c.model.ra.Vec3At(i), d) {
			out = append(out, i)
		}
	}
	return out
}

func (c *PlaneCoefficients) IsIn(p model3d.Coord3D, d float64) bool {
	dd := c.Normal.Dot(p) - c.D
	return -d < dd && dd < d
}
