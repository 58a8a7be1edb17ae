package denoise

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

func TestLocalSpacing(t *testing.T) {
	const N = triangulation.None
	pc := pcd.PointCloud{
		model3d.XYZ(0, 0, 0),
		model3d.XYZ(1, 0, 0),
		model3d.XYZ(0, 1, 0),
		model3d.XYZ(0.3, 0.3, 0),
		model3d.XYZ(0.1, 0, 0),
	}
	tri := &fakeTriangulation{
		// facet 0 holds the closest point 4, but only adjacent facets count
		facets:    [][3]int{{0, 1, 4}, {0, 2, 3}, {2, 3, 4}},
		adjacency: [][3]int{{1, N, N}, {0, N, N}, {N, N, N}},
		locate: map[model3d.Coord3D]int{
			pc[0]:                0,
			pc[2]:                2,
			model3d.XYZ(1, 1, 1): 1,
		},
	}

	testCases := map[string]struct {
		v        model3d.Coord3D
		expected float64
	}{
		"AdjacentOnly": {
			v:        pc[0],
			expected: math.Sqrt(0.18),
		},
		"NoAdjacentFacet": {
			v:        pc[2],
			expected: IsolatedSpacing,
		},
		"NotLocated": {
			v:        model3d.XYZ(9, 9, 9),
			expected: IsolatedSpacing,
		},
		"OffVertex": {
			v:        model3d.XYZ(1, 1, 1),
			expected: math.Sqrt(2),
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			got := LocalSpacing(tri, pc, tt.v)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %g, got %g", tt.expected, got)
			}
		})
	}
}

func TestLocalSpacing_Coincident(t *testing.T) {
	const N = triangulation.None
	pc := make(pcd.PointCloud, 4)
	tri := &fakeTriangulation{
		facets:    [][3]int{{0, 1, 2}, {1, 2, 3}},
		adjacency: [][3]int{{1, N, N}, {0, N, N}},
		locate:    map[model3d.Coord3D]int{{}: 0},
	}
	if got := LocalSpacing(tri, pc, pc[0]); got != IsolatedSpacing {
		t.Errorf("Expected %g, got %g", IsolatedSpacing, got)
	}
}
