package registration

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"github.com/seqsense/pcdenoise/pcd"
)

// toVec3Slice converts ra to the single precision points used by the
// kd-tree and ICP.
func toVec3Slice(ra pcd.Vec3RandomAccessor) pc.Vec3Slice {
	out := make(pc.Vec3Slice, ra.Len())
	for i := range out {
		p := ra.Vec3At(i)
		out[i] = mat.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
	}
	return out
}

type transformedVec3RandomAccessor struct {
	pc.Vec3RandomAccessor
	trans mat.Mat4
}

func (a *transformedVec3RandomAccessor) Vec3At(i int) mat.Vec3 {
	return a.trans.TransformAffine(a.Vec3RandomAccessor.Vec3At(i))
}

type rect struct {
	min, max mat.Vec3
}

func rectIntersection(a, b rect) rect {
	var r rect
	for i := range r.min {
		r.min[i] = max(a.min[i], b.min[i])
		r.max[i] = min(a.max[i], b.max[i])
	}
	return r
}

func (r *rect) IsValid() bool {
	return !(r.min[0] > r.max[0] ||
		r.min[1] > r.max[1] ||
		r.min[2] > r.max[2])
}

func (r *rect) IsInside(v mat.Vec3) bool {
	return !(v[0] < r.min[0] ||
		v[1] < r.min[1] ||
		v[2] < r.min[2] ||
		r.max[0] < v[0] ||
		r.max[1] < v[1] ||
		r.max[2] < v[2])
}

func (r *rect) pad(d float32) {
	r.min = r.min.Sub(mat.Vec3{d, d, d})
	r.max = r.max.Add(mat.Vec3{d, d, d})
}
