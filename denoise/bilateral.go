package denoise

import (
	"math"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/stat"
)

// SigmaFloor is the lower bound of sigma_s.
const SigmaFloor = 1e-12

// Displacement returns the signed offset along n moving v to the
// bilateral weighted height of the candidates closer than 2*sigmaC.
func Displacement(v, n model3d.Coord3D, candidates pcd.Vec3RandomAccessor, sigmaC float64) (float64, error) {
	nc := candidates.Len()
	distSq := make([]float64, 0, nc)
	heights := make([]float64, 0, nc)
	for i := 0; i < nc; i++ {
		d := candidates.Vec3At(i).Sub(v)
		if d.Norm() >= 2*sigmaC {
			continue
		}
		distSq = append(distSq, d.Dot(d))
		heights = append(heights, d.Dot(n))
	}
	if len(heights) == 0 {
		return 0, ErrEmptyNeighborhood
	}

	_, sigmaS := stat.PopMeanStdDev(heights, nil)
	if !(sigmaS >= SigmaFloor) {
		sigmaS = SigmaFloor
	}

	var total, normalizer float64
	for i, h := range heights {
		wc := math.Exp(-distSq[i] / (2 * sigmaC * sigmaC))
		ws := math.Exp(-h * h / (2 * sigmaS * sigmaS))
		total += wc * ws * h
		normalizer += wc * ws
	}
	if normalizer == 0 || math.IsNaN(normalizer) || math.IsInf(normalizer, 0) {
		return 0, ErrZeroNormalizer
	}
	return total / normalizer, nil
}

// Bilateral computes the denoised position of v.
// t and ra must be the triangulation and the point cloud of the current
// pass; neither is modified.
func Bilateral(t triangulation.Triangulation, ra pcd.Vec3RandomAccessor, v model3d.Coord3D, degree int) (model3d.Coord3D, error) {
	f, ok := t.LocateFacet(v)
	if !ok {
		return v, ErrEmptyNeighborhood
	}
	n, indices, err := facetNormal(t, ra, expand(t, f, degree))
	if err != nil {
		return v, err
	}
	sigmaC := spacingAround(t, ra, f, v)
	offset, err := Displacement(v, n, pcd.NewIndiceVec3RandomAccessor(ra, indices), sigmaC)
	if err != nil {
		return v, err
	}
	return v.Add(n.Scale(offset)), nil
}
