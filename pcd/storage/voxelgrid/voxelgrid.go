// Package voxelgrid stores point indices in a dense voxel grid.
package voxelgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// MaxVoxels limits the size of grids created by NewBounds.
const MaxVoxels = 1 << 27

var ErrTooManyVoxels = errors.New("too many voxels")

type VoxelGrid struct {
	voxel         [][]int
	size          [3]int
	origin        model3d.Coord3D
	resolutionInv float64
}

func New(resolution float64, size [3]int, origin model3d.Coord3D) *VoxelGrid {
	return &VoxelGrid{
		voxel:         make([][]int, size[0]*size[1]*size[2]),
		size:          size,
		origin:        origin,
		resolutionInv: 1 / resolution,
	}
}

// NewBounds returns a grid with its origin at min, sized so that every
// point between min and max has a voxel.
func NewBounds(resolution float64, min, max model3d.Coord3D) (*VoxelGrid, error) {
	inv := 1 / resolution
	extent := max.Sub(min)
	var size [3]int
	total := 1.0
	for i, w := range extent.Array() {
		// Same product as posInt so that max maps to the last voxel.
		n := math.Floor(w*inv) + 1
		total *= n
		if !(total <= MaxVoxels) {
			return nil, fmt.Errorf("%w: extent %v at resolution %g", ErrTooManyVoxels, extent, resolution)
		}
		size[i] = int(n)
	}
	return New(resolution, size, min), nil
}

// Add stores index in the voxel of p. It returns false if p is out of
// the grid.
func (v *VoxelGrid) Add(p model3d.Coord3D, index int) bool {
	pos, ok := v.posInt(p)
	if !ok {
		return false
	}
	addr, _ := v.AddrByPosInt(pos)
	v.voxel[addr] = append(v.voxel[addr], index)
	return true
}

func (v *VoxelGrid) GetByAddr(a int) []int {
	return v.voxel[a]
}

func (v *VoxelGrid) AddrByPosInt(p [3]int) (int, bool) {
	x, y, z := p[0], p[1], p[2]
	if x < 0 || y < 0 || z < 0 || x >= v.size[0] || y >= v.size[1] || z >= v.size[2] {
		return 0, false
	}
	return x + (y+z*v.size[1])*v.size[0], true
}

// PosIntByAddr is the inverse of AddrByPosInt.
func (v *VoxelGrid) PosIntByAddr(a int) [3]int {
	return [3]int{
		a % v.size[0],
		(a / v.size[0]) % v.size[1],
		a / (v.size[0] * v.size[1]),
	}
}

func (v *VoxelGrid) posInt(p model3d.Coord3D) ([3]int, bool) {
	d := p.Sub(v.origin)
	pos := [3]int{
		int(math.Floor(d.X * v.resolutionInv)),
		int(math.Floor(d.Y * v.resolutionInv)),
		int(math.Floor(d.Z * v.resolutionInv)),
	}
	for i, x := range pos {
		if x < 0 || x >= v.size[i] {
			return [3]int{}, false
		}
	}
	return pos, true
}

func (v *VoxelGrid) Len() int {
	return len(v.voxel)
}
