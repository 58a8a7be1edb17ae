package voxelgrid

import (
	"errors"
	"reflect"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func get(v *VoxelGrid, p model3d.Coord3D) []int {
	pos, ok := v.posInt(p)
	if !ok {
		return nil
	}
	a, _ := v.AddrByPosInt(pos)
	return v.GetByAddr(a)
}

func TestVoxelGrid(t *testing.T) {
	v := New(0.05, [3]int{64, 64, 64}, model3d.XYZ(2, 5, 10))

	testCases := map[string]struct {
		p     model3d.Coord3D
		added bool
	}{
		"Outside":     {p: model3d.XYZ(-2, 0, 0)},
		"Origin":      {p: model3d.XYZ(2, 5, 10), added: true},
		"SameVoxel":   {p: model3d.XYZ(2.01, 5, 10), added: true},
		"Inside":      {p: model3d.XYZ(2+1, 5+1, 10+1), added: true},
		"BeyondSize":  {p: model3d.XYZ(2+3.21, 5, 10)},
		"BelowOrigin": {p: model3d.XYZ(1.99, 5, 10)},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			if added := v.Add(tt.p, 0); added != tt.added {
				t.Errorf("Expected Add: %v, got: %v", tt.added, added)
			}
		})
	}

	w := New(0.05, [3]int{64, 64, 64}, model3d.XYZ(2, 5, 10))
	w.Add(model3d.XYZ(2, 5, 10), 1)
	w.Add(model3d.XYZ(2.01, 5, 10), 2)
	w.Add(model3d.XYZ(3, 6, 11), 3)
	if ids := get(w, model3d.XYZ(2.04, 5.04, 10.04)); !reflect.DeepEqual([]int{1, 2}, ids) {
		t.Errorf("Points in the voxel differs: %v", ids)
	}
	if ids := get(w, model3d.XYZ(3, 6, 11)); !reflect.DeepEqual([]int{3}, ids) {
		t.Errorf("Points in the voxel differs: %v", ids)
	}
}

func TestVoxelGrid_Addr(t *testing.T) {
	v := New(1, [3]int{3, 4, 5}, model3d.Coord3D{})
	for a := 0; a < v.Len(); a++ {
		pos := v.PosIntByAddr(a)
		b, ok := v.AddrByPosInt(pos)
		if !ok || a != b {
			t.Errorf("Expected address %d from %v, got %d (%v)", a, pos, b, ok)
		}
	}
	if _, ok := v.AddrByPosInt([3]int{3, 0, 0}); ok {
		t.Error("Position out of the voxel grid should be rejected")
	}
}

func TestNewBounds(t *testing.T) {
	testCases := map[string]struct {
		resolution float64
		min, max   model3d.Coord3D
	}{
		// 0.3/0.1 rounds below 3 while 0.3*(1/0.1) rounds to 3
		"RoundedUp":   {resolution: 0.1, max: model3d.XYZ(0.3, 0.3, 0.3)},
		"Negative":    {resolution: 0.1, min: model3d.XYZ(-0.7, -0.3, -1.1), max: model3d.XYZ(0.7, 0.3, 1.1)},
		"Fine":        {resolution: 0.003, max: model3d.XYZ(0.9, 0.09, 0.009)},
		"SinglePoint": {resolution: 0.05, min: model3d.XYZ(1, 2, 3), max: model3d.XYZ(1, 2, 3)},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			v, err := NewBounds(tt.resolution, tt.min, tt.max)
			if err != nil {
				t.Fatal(err)
			}
			for _, p := range []model3d.Coord3D{tt.min, tt.max, tt.min.Mid(tt.max)} {
				if !v.Add(p, 0) {
					t.Errorf("Point %v in the bounds should be added", p)
				}
			}
		})
	}

	_, err := NewBounds(0.001, model3d.Coord3D{}, model3d.XYZ(1000, 1000, 1000))
	if !errors.Is(err, ErrTooManyVoxels) {
		t.Errorf("Expected ErrTooManyVoxels, got %v", err)
	}
}
