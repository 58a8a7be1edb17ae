package pcd

import (
	"github.com/unixpickle/model3d/model3d"
)

// PointCloud is an ordered list of points.
// Indices into a PointCloud are stable for the lifetime of the value.
type PointCloud []model3d.Coord3D

func (pc PointCloud) Vec3At(i int) model3d.Coord3D {
	return pc[i]
}

func (pc PointCloud) Len() int {
	return len(pc)
}

// Clone returns a copy which does not share the backing array.
func (pc PointCloud) Clone() PointCloud {
	if pc == nil {
		return nil
	}
	return append(PointCloud{}, pc...)
}

// FromRandomAccessor copies all points of ra.
func FromRandomAccessor(ra Vec3RandomAccessor) PointCloud {
	out := make(PointCloud, ra.Len())
	for i := range out {
		out[i] = ra.Vec3At(i)
	}
	return out
}
