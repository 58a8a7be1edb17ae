// Package registration compares and aligns point clouds, e.g. a denoised
// cloud against its reference, with point-to-point or point-to-plane ICP.
package registration

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/registration/icp"
	"github.com/seqsense/pcgol/pc/storage/kdtree"

	"github.com/seqsense/pcdenoise/pcd"
)

var (
	ErrNoOverlap        = errors.New("no overlap")
	ErrTooFewPoints     = errors.New("too few points")
	ErrInvalidThreshold = errors.New("correspondence distance must be positive")
)

// Metrics of a registration.
type Metrics struct {
	// Fitness is the ratio of source points having a target point within
	// the threshold.
	Fitness float64
	// InlierRMSE is the RMS distance of those correspondences.
	InlierRMSE float64
	// PlaneRMSE is the RMS distance of the correspondences to the tangent
	// plane of their target point. Target points without a normal are
	// not counted.
	PlaneRMSE       float64
	Correspondences int
}

func (m Metrics) String() string {
	return fmt.Sprintf("fitness=%.6f, inlier_rmse=%.6f, plane_rmse=%.6f, correspondences=%d",
		m.Fitness, m.InlierRMSE, m.PlaneRMSE, m.Correspondences)
}

// Method of the ICP error metric.
type Method int

const (
	MethodPointToPoint Method = iota
	MethodPointToPlane
)

func (m Method) String() string {
	switch m {
	case MethodPointToPoint:
		return "point-to-point"
	case MethodPointToPlane:
		return "point-to-plane"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

var ErrUnknownMethod = errors.New("unknown method")

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "", "point-to-point", "p2p":
		return MethodPointToPoint, nil
	case "point-to-plane", "p2l":
		return MethodPointToPlane, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Identity transformation.
func Identity() mat.Mat4 {
	return mat.Translate(0, 0, 0)
}

// Evaluate transforms source by trans and matches every point to its
// nearest target point within threshold.
func Evaluate(source, target pcd.Vec3RandomAccessor, threshold float64, trans mat.Mat4) Metrics {
	tgt := toVec3Slice(target)
	if len(tgt) == 0 || source.Len() == 0 {
		return Metrics{}
	}
	return newReference(tgt).evaluate(&transformedVec3RandomAccessor{
		Vec3RandomAccessor: toVec3Slice(source),
		trans:              trans,
	}, threshold)
}

// reference is a target cloud indexed for evaluation.
type reference struct {
	points  pc.Vec3Slice
	kdt     *kdtree.KDTree
	normals []mat.Vec3
}

func newReference(points pc.Vec3Slice) *reference {
	return &reference{
		points:  points,
		kdt:     kdtree.New(points),
		normals: estimateNormals(points),
	}
}

func (r *reference) evaluate(source pc.Vec3RandomAccessor, threshold float64) Metrics {
	var m Metrics
	var sumSq, sumPlaneSq float64
	var nPlane int
	for i := 0; i < source.Len(); i++ {
		p := source.Vec3At(i)
		nn := r.kdt.Nearest(p, float32(threshold))
		if nn.ID < 0 {
			continue
		}
		d := p.Sub(r.points[nn.ID])
		dSq := float64(d.NormSq())
		if dSq > threshold*threshold {
			continue
		}
		m.Correspondences++
		sumSq += dSq
		if n := r.normals[nn.ID]; !n.Equal(mat.Vec3{}) {
			dn := float64(d.Dot(n))
			sumPlaneSq += dn * dn
			nPlane++
		}
	}
	if m.Correspondences > 0 {
		m.Fitness = float64(m.Correspondences) / float64(source.Len())
		m.InlierRMSE = math.Sqrt(sumSq / float64(m.Correspondences))
	}
	if nPlane > 0 {
		m.PlaneRMSE = math.Sqrt(sumPlaneSq / float64(nPlane))
	}
	return m
}

type Options struct {
	// MaxCorrespondenceDistance is the matching range of ICP and the
	// inlier threshold of the metrics.
	MaxCorrespondenceDistance float64
	// Padding extends the overlap of the bounding boxes.
	Padding         float64
	MaxIteration    int
	MaxSourcePoints int
	MaxTargetPoints int
	Seed            int64
	Method          Method
}

func DefaultOptions() Options {
	return Options{
		MaxCorrespondenceDistance: 0.02,
		Padding:                   0.1,
		MaxIteration:              50,
		MaxSourcePoints:           10000,
		MaxTargetPoints:           60000,
	}
}

type Result struct {
	// Transformation moves source onto target.
	Transformation mat.Mat4
	// After evaluates the transformed source against the whole target.
	After Metrics
	// Stat is the summary reported by the ICP solver.
	Stat string
}

// Align estimates the rigid transformation of source onto target within
// the overlap of their bounding boxes.
func Align(source, target pcd.Vec3RandomAccessor, opts Options) (*Result, error) {
	const (
		minPairs          = 32
		gradientWeight    = 0.25
		gradientPosThresh = 0.001
		gradientRotThresh = 0.002
	)
	if !(opts.MaxCorrespondenceDistance > 0) {
		return nil, ErrInvalidThreshold
	}
	src, tgt := toVec3Slice(source), toVec3Slice(target)
	if len(src) < minPairs || len(tgt) < minPairs {
		return nil, fmt.Errorf("%w: source %d, target %d, required %d", ErrTooFewPoints, len(src), len(tgt), minPairs)
	}
	minSrc, maxSrc, err := pc.MinMaxVec3(src)
	if err != nil {
		return nil, err
	}
	minTgt, maxTgt, err := pc.MinMaxVec3(tgt)
	if err != nil {
		return nil, err
	}
	padding := float32(opts.Padding)
	is := rectIntersection(rect{minSrc, maxSrc}, rect{minTgt, maxTgt})
	is.pad(padding)
	if !is.IsValid() {
		return nil, ErrNoOverlap
	}
	center := is.min.Add(is.max).Mul(0.5)

	rnd := rand.New(rand.NewSource(opts.Seed))
	sample := func(ra pc.Vec3RandomAccessor, isIn func(mat.Vec3) bool, nMax int) pc.Vec3Slice {
		var cnt int
		for i := 0; i < ra.Len(); i++ {
			if isIn(ra.Vec3At(i)) {
				cnt++
			}
		}
		ratio := float32(1)
		if nMax > 0 && cnt > nMax {
			ratio = float32(nMax) / float32(cnt)
		}
		out := make(pc.Vec3Slice, 0, min(cnt, max(nMax, 0)))
		for i := 0; i < ra.Len(); i++ {
			if p := ra.Vec3At(i); isIn(p) {
				if ratio < 1 && rnd.Float32() > ratio {
					continue
				}
				out = append(out, p.Sub(center))
			}
		}
		return out
	}

	base := sample(tgt, is.IsInside, opts.MaxTargetPoints)
	if len(base) < minPairs {
		return nil, fmt.Errorf("%w: %d target points in the overlap", ErrTooFewPoints, len(base))
	}
	kdt := kdtree.New(base)

	matchRange := float32(opts.MaxCorrespondenceDistance)
	searchRange := matchRange + padding
	moving := sample(src, func(p mat.Vec3) bool {
		if !is.IsInside(p) {
			return false
		}
		return kdt.Nearest(p.Sub(center), searchRange).ID >= 0
	}, opts.MaxSourcePoints)
	if len(moving) < minPairs {
		return nil, fmt.Errorf("%w: %d source points near the target", ErrTooFewPoints, len(moving))
	}

	corresponder := &icp.NearestPointCorresponder{MaxDist: searchRange}
	weightFn := func(distSq float32) float32 {
		a := (1 - distSq/(searchRange*searchRange))
		return a * a
	}
	threshold := mat.Vec6{
		gradientPosThresh, gradientPosThresh, gradientPosThresh,
		gradientRotThresh, gradientRotThresh, gradientRotThresh,
	}
	ppicp := &icp.PointToPointICPGradient{}
	switch opts.Method {
	case MethodPointToPoint:
		ppicp.Evaluator = &icp.PointToPointEvaluator{
			Corresponder: corresponder,
			MinPairs:     minPairs,
			WeightFn:     weightFn,
		}
		ppicp.UpdaterFactory = &icp.GradientDescentUpdaterFactory{
			Weight: mat.Vec6{
				gradientWeight, gradientWeight, gradientWeight,
				gradientWeight, gradientWeight, gradientWeight,
			},
			Threshold:    threshold,
			MaxIteration: opts.MaxIteration,
		}
	case MethodPointToPlane:
		ppicp.Evaluator = &pointToPlaneEvaluator{
			Corresponder: corresponder,
			Normals:      estimateNormals(base),
			MinPairs:     minPairs,
			WeightFn:     weightFn,
		}
		ppicp.UpdaterFactory = &gaussNewtonUpdaterFactory{
			Threshold:    threshold,
			MaxIteration: opts.MaxIteration,
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, opts.Method)
	}
	transFit, stat, err := ppicp.Fit(kdt, moving)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w, stat: %v", err, stat)
	}
	transFit = mat.Translate(center[0], center[1], center[2]).
		Mul(transFit).
		Mul(mat.Translate(-center[0], -center[1], -center[2]))

	return &Result{
		Transformation: transFit,
		After: newReference(tgt).evaluate(&transformedVec3RandomAccessor{
			Vec3RandomAccessor: src,
			trans:              transFit,
		}, opts.MaxCorrespondenceDistance),
		Stat: fmt.Sprintf("%s: %d iterations, value %g", opts.Method, stat.NumIteration, stat.Value),
	}, nil
}
