// Package sac implements sample consensus model fitting.
package sac

import (
	"errors"

	"github.com/unixpickle/model3d/model3d"
)

var ErrNoModel = errors.New("no model fits the samples")

// maxResample bounds the draws spent on finding distinct indices.
const maxResample = 16

type Sampler interface {
	Sample() int
}

type Model interface {
	NumRange() (min, max int)
	Fit([]int) (ModelCoefficients, bool)
}

type ModelCoefficients interface {
	// Score returns the number of supporting points. Larger is better.
	Score() int
	Inliers(float64) []int
	IsIn(model3d.Coord3D, float64) bool
}

type SAC struct {
	Sampler Sampler
	Model   Model
	// StopScore ends Compute once a model reaches it. 0 runs all iterations.
	StopScore int

	best      ModelCoefficients
	bestScore int
}

func New(s Sampler, m Model) *SAC {
	return &SAC{Sampler: s, Model: m}
}

// Compute fits the model to up to n sets of distinct random samples and
// keeps the best scoring one.
func (s *SAC) Compute(n int) error {
	s.best, s.bestScore = nil, 0

	num, _ := s.Model.NumRange()
	ids := make([]int, num)
	for i := 0; i < n; i++ {
		if !s.sample(ids) {
			continue
		}
		coeff, ok := s.Model.Fit(ids)
		if !ok {
			continue
		}
		if score := coeff.Score(); score > s.bestScore {
			s.best, s.bestScore = coeff, score
			if s.StopScore > 0 && score >= s.StopScore {
				break
			}
		}
	}
	if s.best == nil {
		return ErrNoModel
	}
	return nil
}

func (s *SAC) sample(ids []int) bool {
	for j := range ids {
		var ok bool
		for r := 0; r < maxResample && !ok; r++ {
			ids[j] = s.Sampler.Sample()
			ok = true
			for _, id := range ids[:j] {
				if id == ids[j] {
					ok = false
					break
				}
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Coefficients returns the best model found by the last Compute and its
// score.
func (s *SAC) Coefficients() (ModelCoefficients, int) {
	return s.best, s.bestScore
}
