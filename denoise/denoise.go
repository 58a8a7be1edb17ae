package denoise

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

// Policy selects the handling of vertex failures.
type Policy int

const (
	// PolicySkip keeps the position of a failed vertex.
	PolicySkip Policy = iota
	// PolicyAbort stops the run on the first failed vertex.
	PolicyAbort
)

func (p Policy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// State of a Denoiser.
type State int32

const (
	StateIdle State = iota
	StateTriangulating
	StatePerVertexPass
	StateAggregating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriangulating:
		return "triangulating"
	case StatePerVertexPass:
		return "per-vertex pass"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// PassStats summarizes a finished pass.
type PassStats struct {
	Pass       int
	Points     int
	Facets     int
	Skipped    int
	MaxOffset  float64
	MeanOffset float64
	Elapsed    time.Duration
}

func (s PassStats) String() string {
	return fmt.Sprintf("pass %d: %d points, %d facets, %d skipped, offset max %g mean %g (%v)",
		s.Pass, s.Points, s.Facets, s.Skipped, s.MaxOffset, s.MeanOffset, s.Elapsed)
}

var ErrInvalidParameter = errors.New("invalid parameter")

// Denoiser runs bilateral denoising passes.
type Denoiser struct {
	// Triangulator defaults to PCA projected Delaunay triangulation.
	Triangulator triangulation.Triangulator
	Iterations   int
	// NeighborDegree is the number of adjacency hops used for the normal.
	NeighborDegree int
	Policy         Policy
	// Workers defaults to GOMAXPROCS.
	Workers int
	// OnPass is called after each pass with the resulting point cloud,
	// which must not be modified.
	OnPass func(PassStats, pcd.PointCloud)

	state atomic.Int32
}

func (d *Denoiser) State() State {
	return State(d.state.Load())
}

func (d *Denoiser) setState(s State) {
	d.state.Store(int32(s))
}

// Run denoises a copy of points. The input is never modified and the
// output has the same length and order as the input.
func (d *Denoiser) Run(ctx context.Context, points pcd.PointCloud) (pcd.PointCloud, error) {
	if d.Iterations < 0 {
		return nil, fmt.Errorf("%w: negative iterations %d", ErrInvalidParameter, d.Iterations)
	}
	if d.NeighborDegree < 0 {
		return nil, fmt.Errorf("%w: negative neighbor degree %d", ErrInvalidParameter, d.NeighborDegree)
	}
	tr := d.Triangulator
	if tr == nil {
		tr = &triangulation.Delaunay{}
	}

	d.setState(StateIdle)
	current := points.Clone()
	for pass := 0; pass < d.Iterations; pass++ {
		if err := ctx.Err(); err != nil {
			d.setState(StateIdle)
			return nil, err
		}
		start := time.Now()

		d.setState(StateTriangulating)
		tri, err := tr.Triangulate(current)
		if err != nil {
			d.setState(StateIdle)
			return nil, fmt.Errorf("pass %d: %w: %w", pass, ErrTriangulation, err)
		}

		d.setState(StatePerVertexPass)
		res, err := d.pass(ctx, tri, current)
		if err != nil {
			d.setState(StateIdle)
			return nil, fmt.Errorf("pass %d: %w", pass, err)
		}

		d.setState(StateAggregating)
		next, stats := aggregate(current, res)
		stats.Pass = pass
		stats.Facets = tri.NumFacets()
		stats.Elapsed = time.Since(start)
		current = next
		if d.OnPass != nil {
			d.OnPass(stats, current)
		}
	}
	d.setState(StateDone)
	return current, nil
}

func (d *Denoiser) workers() int {
	if d.Workers > 0 {
		return d.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// pass computes the new position of every vertex. Positions are read from
// points only and written to disjoint slots of the result.
func (d *Denoiser) pass(ctx context.Context, tri triangulation.Triangulation, points pcd.PointCloud) (*passResult, error) {
	n := len(points)
	res := &passResult{
		pos:    make(pcd.PointCloud, n),
		failed: make([]bool, n),
	}
	workers := d.workers()
	chunk := (n + 4*workers - 1) / (4 * workers)
	if chunk < 1 {
		chunk = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for begin := 0; begin < n; begin += chunk {
		begin, end := begin, min(begin+chunk, n)
		g.Go(func() error {
			for i := begin; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p, err := Bilateral(tri, points, points[i], d.NeighborDegree)
				if err != nil {
					if d.Policy == PolicyAbort {
						return &VertexError{Index: i, Err: err}
					}
					res.failed[i] = true
					p = points[i]
				}
				res.pos[i] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

type passResult struct {
	pos    pcd.PointCloud
	failed []bool
}

func aggregate(prev pcd.PointCloud, res *passResult) (pcd.PointCloud, PassStats) {
	stats := PassStats{Points: len(prev)}
	var sum float64
	for i, p := range res.pos {
		if res.failed[i] {
			stats.Skipped++
			continue
		}
		off := p.Dist(prev[i])
		sum += off
		if off > stats.MaxOffset {
			stats.MaxOffset = off
		}
	}
	if len(prev) > 0 {
		stats.MeanOffset = sum / float64(len(prev))
	}
	return res.pos, stats
}
