package cluster

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
	storage "github.com/seqsense/pcdenoise/pcd/storage/voxelgrid"
)

func TestCluster(t *testing.T) {
	var surface pcd.PointCloud
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			surface = append(surface, model3d.XYZ(float64(i)*0.1, float64(j)*0.1, 0))
		}
	}
	in := append(pcd.PointCloud{model3d.XYZ(0.2, 0.2, 3)}, surface...)
	in = append(in, model3d.XYZ(5, 5, 5), model3d.XYZ(5.05, 5, 5))

	testCases := map[string]struct {
		resolution float64
		minPoints  int
		expected   pcd.PointCloud
	}{
		"RemoveIsolated": {
			resolution: 0.15,
			minPoints:  3,
			expected:   surface,
		},
		"KeepPairs": {
			resolution: 0.15,
			minPoints:  2,
			expected:   append(surface.Clone(), model3d.XYZ(5, 5, 5), model3d.XYZ(5.05, 5, 5)),
		},
		"Disabled": {
			resolution: 0.15,
			minPoints:  0,
			expected:   in,
		},
		"RemoveAll": {
			resolution: 0.15,
			minPoints:  100,
			expected:   pcd.PointCloud{},
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			out, err := New(tt.resolution, tt.minPoints).Filter(in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, out); diff != "" {
				t.Errorf("Unexpected points (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestCluster_Extent(t *testing.T) {
	// 0.3 is on the upper boundary of the last voxel
	in := pcd.PointCloud{
		model3d.XYZ(0, 0, 0),
		model3d.XYZ(0.1, 0, 0),
		model3d.XYZ(0.2, 0, 0),
		model3d.XYZ(0.3, 0, 0),
	}
	out, err := New(0.1, 2).Filter(in)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("Unexpected points (-expected +got):\n%s", diff)
	}
}

func TestCluster_Error(t *testing.T) {
	in := pcd.PointCloud{model3d.XYZ(0, 0, 0), model3d.XYZ(1000, 1000, 1000)}
	if _, err := New(0, 2).Filter(in); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("Expected ErrInvalidResolution, got %v", err)
	}
	if _, err := New(0.001, 2).Filter(in); !errors.Is(err, storage.ErrTooManyVoxels) {
		t.Errorf("Expected ErrTooManyVoxels, got %v", err)
	}
}
