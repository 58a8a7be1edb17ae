// Package voxelgrid segments point clouds into clusters of connected voxels.
package voxelgrid

import (
	"github.com/unixpickle/model3d/model3d"

	storage "github.com/seqsense/pcdenoise/pcd/storage/voxelgrid"
)

// neighbors are the offsets of the 26 voxels touching a voxel.
var neighbors = func() [][3]int {
	var out [][3]int
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				if x != 0 || y != 0 || z != 0 {
					out = append(out, [3]int{x, y, z})
				}
			}
		}
	}
	return out
}()

type VoxelGrid struct {
	*storage.VoxelGrid
}

func New(resolution float64, size [3]int, origin model3d.Coord3D) *VoxelGrid {
	return &VoxelGrid{VoxelGrid: storage.New(resolution, size, origin)}
}

// NewBounds returns a grid covering every point between min and max.
func NewBounds(resolution float64, min, max model3d.Coord3D) (*VoxelGrid, error) {
	vg, err := storage.NewBounds(resolution, min, max)
	if err != nil {
		return nil, err
	}
	return &VoxelGrid{VoxelGrid: vg}, nil
}

// Segments returns the point indices of every cluster of connected
// occupied voxels. Clusters are ordered by their lowest voxel address.
func (v *VoxelGrid) Segments() [][]int {
	visited := make([]bool, v.Len())
	var out [][]int
	var queue []int
	for a := range visited {
		if visited[a] || len(v.GetByAddr(a)) == 0 {
			continue
		}
		visited[a] = true
		queue = append(queue[:0], a)
		var segment []int
		for head := 0; head < len(queue); head++ {
			addr := queue[head]
			segment = append(segment, v.GetByAddr(addr)...)
			pos := v.PosIntByAddr(addr)
			for _, d := range neighbors {
				n, ok := v.AddrByPosInt([3]int{pos[0] + d[0], pos[1] + d[1], pos[2] + d[2]})
				if !ok || visited[n] || len(v.GetByAddr(n)) == 0 {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}
		out = append(out, segment)
	}
	return out
}
