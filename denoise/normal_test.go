package denoise

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

func TestNormal(t *testing.T) {
	t.Run("UnitLength", func(t *testing.T) {
		pc := grid(8, bumpy)
		tri, err := (&triangulation.Delaunay{}).Triangulate(pc)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range pc {
			for degree := 0; degree < 3; degree++ {
				n, indices, err := Normal(tri, pc, p, degree)
				if err != nil {
					t.Fatalf("Point %d, degree %d: %v", i, degree, err)
				}
				if l := n.Norm(); math.Abs(l-1) > 1e-9 {
					t.Errorf("Expected unit normal, got length %g", l)
				}
				if math.Abs(n.Z) < 0.9 {
					t.Errorf("Expected normal close to z axis, got %v", n)
				}
				for j := 1; j < len(indices); j++ {
					if indices[j-1] >= indices[j] {
						t.Fatalf("Indices must be sorted and unique: %v", indices)
					}
				}
			}
		}
	})
	t.Run("Plane", func(t *testing.T) {
		pc := grid(5, flat)
		tri, err := (&triangulation.Delaunay{Projection: triangulation.ProjectionXY}).Triangulate(pc)
		if err != nil {
			t.Fatal(err)
		}
		n, _, err := Normal(tri, pc, pc[12], 1)
		if err != nil {
			t.Fatal(err)
		}
		if n.X != 0 || n.Y != 0 || math.Abs(math.Abs(n.Z)-1) > 1e-12 {
			t.Errorf("Expected normal along z, got %v", n)
		}
	})
	t.Run("Indices", func(t *testing.T) {
		tri := strip()
		pc := pcd.PointCloud{
			model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 0),
			model3d.XYZ(2, 0, 0), model3d.XYZ(3, 1, 0),
			model3d.XYZ(4, 0, 0), model3d.XYZ(5, 1, 0),
			model3d.XYZ(6, 0, 0),
		}
		_, indices, err := Normal(tri, pc, pc[2], 0)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, indices); diff != "" {
			t.Errorf("Unexpected indices (-expected +got):\n%s", diff)
		}
	})
	t.Run("NotLocated", func(t *testing.T) {
		pc := pcd.PointCloud{model3d.XYZ(5, 5, 5)}
		if _, _, err := Normal(strip(), pc, pc[0], 1); !errors.Is(err, ErrUndefinedNormal) {
			t.Errorf("Expected ErrUndefinedNormal, got %v", err)
		}
	})
	t.Run("DegenerateFacets", func(t *testing.T) {
		// every point coincides
		pc := make(pcd.PointCloud, 7)
		tri := strip()
		tri.locate = map[model3d.Coord3D]int{{}: 2}
		if _, _, err := Normal(tri, pc, pc[0], 1); !errors.Is(err, ErrUndefinedNormal) {
			t.Errorf("Expected ErrUndefinedNormal, got %v", err)
		}
	})
}
