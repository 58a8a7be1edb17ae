package pcd

import (
	"github.com/unixpickle/model3d/model3d"
)

type Vec3RandomAccessor interface {
	Vec3At(int) model3d.Coord3D
	Len() int
}
