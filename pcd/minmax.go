package pcd

import (
	"errors"
	"math"

	"github.com/unixpickle/model3d/model3d"
)

var ErrNoPoint = errors.New("no point")

func MinMaxVec3(ra Vec3RandomAccessor) (model3d.Coord3D, model3d.Coord3D, error) {
	n := ra.Len()
	if n == 0 {
		return model3d.Coord3D{}, model3d.Coord3D{}, ErrNoPoint
	}
	min := model3d.XYZ(math.Inf(1), math.Inf(1), math.Inf(1))
	max := model3d.XYZ(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for i := 0; i < n; i++ {
		v := ra.Vec3At(i)
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max, nil
}
