package pcd

import (
	"github.com/unixpickle/model3d/model3d"
)

type indiceVec3RandomAccessor struct {
	indice []int
	ra     Vec3RandomAccessor
}

func (i *indiceVec3RandomAccessor) Len() int {
	return len(i.indice)
}

func (i *indiceVec3RandomAccessor) Vec3At(j int) model3d.Coord3D {
	return i.ra.Vec3At(i.indice[j])
}

// NewIndiceVec3RandomAccessor returns a view of ra restricted to the given indices.
func NewIndiceVec3RandomAccessor(ra Vec3RandomAccessor, indice []int) Vec3RandomAccessor {
	return &indiceVec3RandomAccessor{
		ra:     ra,
		indice: indice,
	}
}
