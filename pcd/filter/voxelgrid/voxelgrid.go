package voxelgrid

import (
	"errors"
	"math"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/pcd/filter"
	"github.com/unixpickle/model3d/model3d"
)

var ErrInvalidLeafSize = errors.New("leaf size must be positive")

type Options struct {
	LeafSize model3d.Coord3D
}

type voxelGrid struct {
	Options
}

type voxel struct {
	sum model3d.Coord3D
	num int
}

// New returns a filter replacing the points of each occupied voxel by their
// centroid. Output order follows the first point seen in each voxel.
func New(leafSize model3d.Coord3D) filter.Filter {
	vg := &voxelGrid{
		Options: Options{
			LeafSize: leafSize,
		},
	}
	return vg
}

func (f *voxelGrid) Filter(pc pcd.PointCloud) (pcd.PointCloud, error) {
	if !(f.LeafSize.X > 0 && f.LeafSize.Y > 0 && f.LeafSize.Z > 0) {
		return nil, ErrInvalidLeafSize
	}
	if len(pc) == 0 {
		return pcd.PointCloud{}, nil
	}
	min, _, err := pcd.MinMaxVec3(pc)
	if err != nil {
		return nil, err
	}

	addr := make(map[[3]int]int)
	var voxels []voxel
	for _, v := range pc {
		p := v.Sub(min)
		key := [3]int{
			int(math.Floor(p.X / f.LeafSize.X)),
			int(math.Floor(p.Y / f.LeafSize.Y)),
			int(math.Floor(p.Z / f.LeafSize.Z)),
		}
		i, ok := addr[key]
		if !ok {
			i = len(voxels)
			addr[key] = i
			voxels = append(voxels, voxel{})
		}
		voxels[i].sum = voxels[i].sum.Add(p)
		voxels[i].num++
	}

	out := make(pcd.PointCloud, len(voxels))
	for i, v := range voxels {
		out[i] = v.sum.Scale(1 / float64(v.num)).Add(min)
	}
	return out, nil
}
