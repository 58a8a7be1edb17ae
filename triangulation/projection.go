package triangulation

import (
	"fmt"
	"strings"

	"github.com/fogleman/delaunay"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/pcd/sac"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection selects the 2D parameter plane used for triangulation.
type Projection int

const (
	// ProjectionPCA uses the best fit plane of the points.
	ProjectionPCA Projection = iota
	// ProjectionXY drops the Z coordinate.
	ProjectionXY
	// ProjectionRANSAC uses the best fit plane of the inliers of the
	// dominant plane found by random sample consensus. It is robust
	// against outliers tilting the PCA plane.
	ProjectionRANSAC
)

func (p Projection) String() string {
	switch p {
	case ProjectionPCA:
		return "pca"
	case ProjectionXY:
		return "xy"
	case ProjectionRANSAC:
		return "ransac"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(s) {
	case "pca", "":
		return ProjectionPCA, nil
	case "xy":
		return ProjectionXY, nil
	case "ransac":
		return ProjectionRANSAC, nil
	}
	return 0, fmt.Errorf("unknown projection %q", s)
}

func (p Projection) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Projection) UnmarshalText(b []byte) error {
	v, err := ParseProjection(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type plane struct {
	origin, u, v model3d.Coord3D
}

func (pl *plane) project(p model3d.Coord3D) delaunay.Point {
	d := p.Sub(pl.origin)
	return delaunay.Point{X: d.Dot(pl.u), Y: d.Dot(pl.v)}
}

func newPlane(ra pcd.Vec3RandomAccessor, p Projection) (*plane, error) {
	switch p {
	case ProjectionXY:
		return &plane{
			u: model3d.XYZ(1, 0, 0),
			v: model3d.XYZ(0, 1, 0),
		}, nil
	case ProjectionPCA:
		return fitPlane(ra)
	case ProjectionRANSAC:
		return fitPlaneRANSAC(ra)
	}
	return nil, fmt.Errorf("unknown projection %v", p)
}

// fitPlane spans the plane by the two principal components of the largest
// variance.
func fitPlane(ra pcd.Vec3RandomAccessor) (*plane, error) {
	n := ra.Len()
	mPt := mat.NewDense(n, 3, nil)
	var origin model3d.Coord3D
	for i := 0; i < n; i++ {
		v := ra.Vec3At(i)
		mPt.Set(i, 0, v.X)
		mPt.Set(i, 1, v.Y)
		mPt.Set(i, 2, v.Z)
		origin = origin.Add(v)
	}
	origin = origin.Scale(1 / float64(n))

	var pc stat.PC
	if ok := pc.PrincipalComponents(mPt, nil); !ok {
		return nil, fmt.Errorf("%w: principal component analysis failed", ErrDegenerate)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	// Columns are ordered by decreasing variance.
	col := func(j int) model3d.Coord3D {
		return model3d.XYZ(vecs.At(0, j), vecs.At(1, j), vecs.At(2, j))
	}
	return &plane{
		origin: origin,
		u:      col(0),
		v:      col(1),
	}, nil
}

const (
	ransacIterations = 200
	// ransacThreshold is relative to the bounding box diagonal.
	ransacThreshold = 0.02
	ransacSeed      = 1
)

// fitPlaneRANSAC refines the dominant plane by PCA of its inliers.
// It falls back to PCA of all points if no plane is found.
func fitPlaneRANSAC(ra pcd.Vec3RandomAccessor) (*plane, error) {
	min, max, err := pcd.MinMaxVec3(ra)
	if err != nil {
		return nil, err
	}
	threshold := ransacThreshold * max.Dist(min)
	s := sac.New(
		sac.NewRandomSampler(ra.Len(), ransacSeed),
		sac.NewPlaneModel(ra, threshold),
	)
	s.StopScore = ra.Len()
	if err := s.Compute(ransacIterations); err != nil {
		return fitPlane(ra)
	}
	best, _ := s.Coefficients()
	inliers := best.Inliers(threshold)
	if len(inliers) < 3 {
		return fitPlane(ra)
	}
	pl, err := fitPlane(pcd.NewIndiceVec3RandomAccessor(ra, inliers))
	if err != nil {
		return fitPlane(ra)
	}
	return pl, nil
}
