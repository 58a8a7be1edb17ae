package registration

import (
	"math"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/registration/icp"
	"github.com/seqsense/pcgol/pc/storage"
	"github.com/unixpickle/model3d/model3d"
	gmat "gonum.org/v1/gonum/mat"

	"github.com/seqsense/pcdenoise/denoise"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

// estimateNormals returns the surface normal at every point, estimated
// from the facets around it in the Delaunay triangulation of points.
// Points without a normal get the zero vector.
func estimateNormals(points pc.Vec3Slice) []mat.Vec3 {
	normals := make([]mat.Vec3, len(points))
	cloud := make(pcd.PointCloud, len(points))
	for i, p := range points {
		cloud[i] = model3d.XYZ(float64(p[0]), float64(p[1]), float64(p[2]))
	}
	tri, err := (&triangulation.Delaunay{}).Triangulate(cloud)
	if err != nil {
		return normals
	}
	for i, p := range cloud {
		n, _, err := denoise.Normal(tri, cloud, p, 0)
		if err != nil {
			continue
		}
		normals[i] = mat.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
	}
	return normals
}

// pointToPlaneEvaluator evaluates the squared distances of the target
// points to the tangent planes of their nearest base points.
//
// n: base normal
// r = (pt - pb).n
// J = {n, pt x n}
// f = sum(w*r^2) / sum(w)
// grad f = 2 * sum(w*r*J) / sum(w)
// hess f ~ 2 * sum(w*J*J^T) / sum(w)
type pointToPlaneEvaluator struct {
	Corresponder icp.PointToPointCorresponder
	Normals      []mat.Vec3
	MinPairs     int
	WeightFn     icp.EvaluateWeightFn
}

func (pointToPlaneEvaluator) HasGradient() bool { return true }
func (pointToPlaneEvaluator) HasHessian() bool  { return true }

func (e *pointToPlaneEvaluator) Evaluate(base storage.Search, target pc.Vec3RandomAccessor) (*icp.Evaluated, error) {
	weightFn := e.WeightFn
	if weightFn == nil {
		weightFn = icp.DefaultEvaluateWeightFn
	}
	out := &icp.Evaluated{}
	var sumWeight float32
	var cnt int
	for _, pair := range e.Corresponder.Pairs(base, target) {
		n := e.Normals[pair.BaseID]
		if n.Equal(mat.Vec3{}) {
			continue
		}
		pb := base.Vec3At(pair.BaseID)
		pt := target.Vec3At(pair.TargetID)
		r := pt.Sub(pb).Dot(n)
		c := pt.Cross(n)
		j := [6]float32{n[0], n[1], n[2], c[0], c[1], c[2]}

		w := weightFn(pair.SquaredDistance)
		out.Value += w * r * r
		out.DistRMS += w * pair.SquaredDistance
		for a := 0; a < 6; a++ {
			out.Gradient[a] += w * r * j[a]
			for b := 0; b < 6; b++ {
				out.Hessian[6*a+b] += w * j[a] * j[b]
			}
		}
		sumWeight += w
		cnt++
	}
	minPairs := e.MinPairs
	if minPairs == 0 {
		minPairs = 6
	}
	if cnt < minPairs || sumWeight <= 0 {
		return nil, icp.ErrNotEnoughPairs
	}

	f := 1 / sumWeight
	out.Value *= f
	out.DistRMS = float32(math.Sqrt(float64(out.DistRMS * f)))
	for i := range out.Gradient {
		out.Gradient[i] *= 2 * f
	}
	for i := range out.Hessian {
		out.Hessian[i] *= 2 * f
	}
	return out, nil
}

// gaussNewtonUpdaterFactory creates updaters solving the linearized
// problem given by the gradient and the Hessian at every iteration.
type gaussNewtonUpdaterFactory struct {
	Threshold    mat.Vec6
	MaxIteration int
}

func (f gaussNewtonUpdaterFactory) New() icp.UpdaterGradient {
	if f.MaxIteration == 0 {
		f.MaxIteration = 30
	}
	return &gaussNewtonUpdater{f: f}
}

type gaussNewtonUpdater struct {
	f gaussNewtonUpdaterFactory
	i int
}

// dampingRatio regularizes the directions the surface does not constrain,
// e.g. the sliding along a plane.
const dampingRatio = 1e-6

func (u *gaussNewtonUpdater) Update(trans mat.Mat4, ev *icp.Evaluated) (mat.Mat4, bool) {
	var trace float64
	for i := 0; i < 6; i++ {
		trace += float64(ev.Hessian[7*i])
	}
	if !(trace > 0) {
		return trans, true
	}
	damping := dampingRatio * trace / 6

	h := gmat.NewSymDense(6, nil)
	g := gmat.NewVecDense(6, nil)
	for a := 0; a < 6; a++ {
		for b := a; b < 6; b++ {
			h.SetSym(a, b, float64(ev.Hessian[6*a+b]))
		}
		h.SetSym(a, a, h.At(a, a)+damping)
		g.SetVec(a, -float64(ev.Gradient[a]))
	}
	var chol gmat.Cholesky
	if ok := chol.Factorize(h); !ok {
		return trans, true
	}
	var delta gmat.VecDense
	if err := chol.SolveVecTo(&delta, g); err != nil {
		return trans, true
	}

	converged := true
	var d mat.Vec6
	for i := range d {
		d[i] = float32(delta.AtVec(i))
		if d[i] < -u.f.Threshold[i] || u.f.Threshold[i] < d[i] {
			converged = false
		}
	}
	rot := mat.Vec3{d[3], d[4], d[5]}
	deltaTrans := mat.Translate(d[0], d[1], d[2])
	if ang := rot.Norm(); ang > 0 {
		axis := rot.Mul(1 / ang)
		deltaTrans = deltaTrans.Mul(mat.Rotate(axis[0], axis[1], axis[2], ang))
	}
	trans = deltaTrans.Mul(trans)
	u.i++
	return trans, converged || u.i >= u.f.MaxIteration
}
