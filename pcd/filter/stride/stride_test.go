package stride

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/unixpickle/model3d/model3d"
)

func TestStride(t *testing.T) {
	pc := make(pcd.PointCloud, 7)
	for i := range pc {
		pc[i] = model3d.XYZ(float64(i), 0, 0)
	}

	for name, tt := range map[string]struct {
		n        int
		expected []float64
	}{
		"Disabled": {n: 0, expected: []float64{0, 1, 2, 3, 4, 5, 6}},
		"One":      {n: 1, expected: []float64{0, 1, 2, 3, 4, 5, 6}},
		"Two":      {n: 2, expected: []float64{0, 2, 4, 6}},
		"Three":    {n: 3, expected: []float64{0, 3, 6}},
		"Large":    {n: 100, expected: []float64{0}},
	} {
		tt := tt
		t.Run(name, func(t *testing.T) {
			out, err := New(tt.n).Filter(pc)
			if err != nil {
				t.Fatal(err)
			}
			var xs []float64
			for _, p := range out {
				xs = append(xs, p.X)
			}
			if diff := cmp.Diff(tt.expected, xs); diff != "" {
				t.Errorf("Unexpected points (-expected +got):\n%s", diff)
			}
		})
	}

	t.Run("NotShared", func(t *testing.T) {
		out, err := New(0).Filter(pc)
		if err != nil {
			t.Fatal(err)
		}
		out[0] = model3d.XYZ(100, 0, 0)
		if pc[0].X != 0 {
			t.Error("Filter output must not share the input array")
		}
	})
	t.Run("Negative", func(t *testing.T) {
		if _, err := New(-1).Filter(pc); !errors.Is(err, ErrNegativeStride) {
			t.Errorf("Expected ErrNegativeStride, got: %v", err)
		}
	})
}
