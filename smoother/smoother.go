// Package smoother runs the external non-iterative feature preserving mesh
// smoother, which reads a GTS surface on stdin and writes the smoothed
// surface on stdout.
package smoother

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/seqsense/pcdenoise/gts"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

// Distribution of the spatial weight.
type Distribution int

const (
	Gaussian Distribution = iota + 1
	Exponential
	Gamma
)

func (d Distribution) String() string {
	switch d {
	case Gaussian:
		return "gaussian"
	case Exponential:
		return "exponential"
	case Gamma:
		return "gamma"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// ParseDistribution accepts a name or the numeric mode.
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(s) {
	case "1", "gaussian":
		return Gaussian, nil
	case "2", "exponential":
		return Exponential, nil
	case "3", "gamma":
		return Gamma, nil
	}
	return 0, fmt.Errorf("unknown distribution %q", s)
}

var ErrInvalidParams = errors.New("invalid smoother parameters")

// Params are relative to the mean edge length of the surface.
type Params struct {
	SigmaF       float64
	SigmaG       float64
	Distribution Distribution
}

func (p Params) Validate() error {
	if !(p.SigmaF > 0) || !(p.SigmaG > 0) {
		return fmt.Errorf("%w: sigma_f and sigma_g must be positive", ErrInvalidParams)
	}
	switch p.Distribution {
	case Gaussian, Exponential, Gamma:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Distribution)
	}
	return nil
}

// Args returns the positional command line arguments.
func (p Params) Args() []string {
	return []string{
		strconv.FormatFloat(p.SigmaF, 'g', -1, 64),
		strconv.FormatFloat(p.SigmaG, 'g', -1, 64),
		strconv.Itoa(int(p.Distribution)),
	}
}

// Runner executes the smoother at Path.
type Runner struct {
	Path string
	// Stderr receives the progress output of the smoother if set.
	Stderr io.Writer
}

// Smooth writes the triangulation t of ra to the smoother and parses the
// resulting surface.
func (r *Runner) Smooth(ctx context.Context, ra pcd.Vec3RandomAccessor, t triangulation.Triangulation, p Params) (*gts.Surface, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var in bytes.Buffer
	if err := gts.Write(&in, ra, t); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, r.Path, p.Args()...)
	cmd.Stdin = &in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w, stderr: %s", r.Path, err, strings.TrimSpace(stderr.String()))
	}

	s, err := gts.Read(&out)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", r.Path, err)
	}
	return s, nil
}
