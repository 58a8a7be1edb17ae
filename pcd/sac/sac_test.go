package sac

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
)

func TestSAC(t *testing.T) {
	pc := pcd.PointCloud{
		model3d.XYZ(0.0, 0.0, 0.0),
		model3d.XYZ(0.1, 0.0, 0.1),
		model3d.XYZ(0.2, 0.0, 0.2),
		model3d.XYZ(0.2, 0.1, 0.6), // outlier
		model3d.XYZ(0.0, 0.1, 0.0),
		model3d.XYZ(0.1, 0.1, 0.1),
		model3d.XYZ(0.2, 0.1, 0.2),
		model3d.XYZ(0.0, 0.2, 0.0),
		model3d.XYZ(0.1, 0.2, 0.1),
		model3d.XYZ(0.2, 0.2, 0.2),
		model3d.XYZ(0.3, 0.7, 0.0), // outlier
		model3d.XYZ(0.6, 0.7, 0.0), // outlier
		model3d.XYZ(0.6, 0.3, 0.0), // outlier
	}
	m := NewPlaneModel(pc, 0.01)

	s := New(NewRandomSampler(len(pc), 1), m)
	if err := s.Compute(200); err != nil {
		t.Fatal(err)
	}

	best, score := s.Coefficients()
	if score != 9 {
		t.Errorf("Expected score 9, got %d", score)
	}
	indice := best.Inliers(0.05)
	expectedIndice := []int{0, 1, 2, 4, 5, 6, 7, 8, 9}
	if !reflect.DeepEqual(expectedIndice, indice) {
		t.Errorf("Expected inlier: %v, got: %v", expectedIndice, indice)
	}

	coeff := best.(*PlaneCoefficients)
	n := coeff.Normal
	if math.Abs(math.Abs(n.X)-math.Sqrt(0.5)) > 1e-9 || math.Abs(n.Y) > 1e-9 {
		t.Errorf("Expected normal parallel to (1, 0, -1), got %v", n)
	}
}

func TestSAC_Degenerate(t *testing.T) {
	pc := pcd.PointCloud{
		model3d.XYZ(0, 0, 0),
		model3d.XYZ(1, 1, 1),
		model3d.XYZ(2, 2, 2),
	}
	s := New(NewRandomSampler(len(pc), 1), NewPlaneModel(pc, 0.1))
	if err := s.Compute(50); !errors.Is(err, ErrNoModel) {
		t.Errorf("Expected ErrNoModel, got %v", err)
	}
	if best, _ := s.Coefficients(); best != nil {
		t.Error("Coefficients should not be set")
	}
}

func TestSAC_StopScore(t *testing.T) {
	var pc pcd.PointCloud
	for i := 0; i < 10; i++ {
		pc = append(pc, model3d.XYZ(float64(i%4), float64(i/4), 0))
	}
	counter := &countingSampler{Sampler: NewRandomSampler(len(pc), 1)}
	s := New(counter, NewPlaneModel(pc, 0.01))
	s.StopScore = len(pc)
	if err := s.Compute(1000); err != nil {
		t.Fatal(err)
	}
	if _, score := s.Coefficients(); score != len(pc) {
		t.Errorf("Expected score %d, got %d", len(pc), score)
	}
	if counter.n >= 1000*3 {
		t.Errorf("Compute should stop early, sampled %d times", counter.n)
	}
}

type countingSampler struct {
	Sampler
	n int
}

func (s *countingSampler) Sample() int {
	s.n++
	return s.Sampler.Sample()
}

func TestPlaneCoefficients_IsIn(t *testing.T) {
	pc := pcd.PointCloud{
		model3d.XYZ(0, 0, 1),
		model3d.XYZ(1, 0, 1),
		model3d.XYZ(0, 1, 1),
	}
	coeff, ok := NewPlaneModel(pc, 0.1).Fit([]int{0, 1, 2})
	if !ok {
		t.Fatal("Fit should succeed")
	}
	testCases := map[string]struct {
		p      model3d.Coord3D
		inside bool
	}{
		"OnPlane":  {p: model3d.XYZ(5, -3, 1), inside: true},
		"Near":     {p: model3d.XYZ(0, 0, 1.05), inside: true},
		"Boundary": {p: model3d.XYZ(0, 0, 1.1), inside: false},
		"Far":      {p: model3d.XYZ(0, 0, 0), inside: false},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			if in := coeff.IsIn(tt.p, 0.1); in != tt.inside {
				t.Errorf("Expected IsIn: %v, got: %v", tt.inside, in)
			}
		})
	}
	if e := coeff.Score(); e != 3 {
		t.Errorf("Expected score 3, got %d", e)
	}
}
