// Package gts reads and writes triangulated surfaces in the GNU Triangulated
// Surface text format.
//
// A file starts with "nv ne nf", followed by nv vertex lines "x y z", ne
// edge lines "v1 v2" and nf face lines "e1 e2 e3". Edge and face references
// are 1-based. Lines starting with '#' are comments.
package gts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/triangulation"
)

var ErrFormat = errors.New("invalid gts")

// Surface holds 0-based edges and faces.
type Surface struct {
	Vertices pcd.PointCloud
	Edges    [][2]int
	// Faces are loops of three edges.
	Faces [][3]int
}

// NewSurface builds the edge list of the triangulation t over ra.
func NewSurface(ra pcd.Vec3RandomAccessor, t triangulation.Triangulation) *Surface {
	s := &Surface{
		Vertices: pcd.FromRandomAccessor(ra),
		Faces:    make([][3]int, 0, t.NumFacets()),
	}
	edges := make(map[[2]int]int)
	edgeOf := func(a, b int) int {
		key := [2]int{a, b}
		if b < a {
			key = [2]int{b, a}
		}
		if e, ok := edges[key]; ok {
			return e
		}
		e := len(s.Edges)
		edges[key] = e
		s.Edges = append(s.Edges, key)
		return e
	}
	for f := 0; f < t.NumFacets(); f++ {
		v := t.FacetVertices(f)
		s.Faces = append(s.Faces, [3]int{
			edgeOf(v[0], v[1]),
			edgeOf(v[1], v[2]),
			edgeOf(v[2], v[0]),
		})
	}
	return s
}

// Write writes the triangulation t over ra.
func Write(w io.Writer, ra pcd.Vec3RandomAccessor, t triangulation.Triangulation) error {
	return NewSurface(ra, t).Encode(w)
}

func (s *Surface) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", len(s.Vertices), len(s.Edges), len(s.Faces))
	buf := make([]byte, 0, 80)
	for _, p := range s.Vertices {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, p.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Z, 'g', -1, 64)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for _, e := range s.Edges {
		fmt.Fprintf(bw, "%d %d\n", e[0]+1, e[1]+1)
	}
	for _, f := range s.Faces {
		fmt.Fprintf(bw, "%d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}

// Read parses a surface. Extra values on a line, such as the class names of
// the header, are ignored.
func Read(r io.Reader) (*Surface, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	next := func(n int) ([]string, error) {
		for sc.Scan() {
			line++
			args := strings.Fields(sc.Text())
			if len(args) == 0 || strings.HasPrefix(args[0], "#") {
				continue
			}
			if len(args) < n {
				return nil, fmt.Errorf("%w: line %d: expected %d values, got %d", ErrFormat, line, n, len(args))
			}
			return args[:n], nil
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unexpected end of file after line %d", ErrFormat, line)
	}
	ints := func(args []string, max int) ([]int, error) {
		out := make([]int, len(args))
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
			if v < 1 || v > max {
				return nil, fmt.Errorf("%w: line %d: reference %d out of range [1, %d]", ErrFormat, line, v, max)
			}
			out[i] = v - 1
		}
		return out, nil
	}

	header, err := next(3)
	if err != nil {
		return nil, err
	}
	var count [3]int
	for i, a := range header {
		v, err := strconv.Atoi(a)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid header %q", ErrFormat, line, a)
		}
		count[i] = v
	}

	s := &Surface{
		Vertices: make(pcd.PointCloud, 0, count[0]),
		Edges:    make([][2]int, 0, count[1]),
		Faces:    make([][3]int, 0, count[2]),
	}
	for i := 0; i < count[0]; i++ {
		args, err := next(3)
		if err != nil {
			return nil, err
		}
		var v [3]float64
		for j, a := range args {
			if v[j], err = strconv.ParseFloat(a, 64); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
		}
		s.Vertices = append(s.Vertices, model3d.XYZ(v[0], v[1], v[2]))
	}
	for i := 0; i < count[1]; i++ {
		args, err := next(2)
		if err != nil {
			return nil, err
		}
		e, err := ints(args, count[0])
		if err != nil {
			return nil, err
		}
		s.Edges = append(s.Edges, [2]int{e[0], e[1]})
	}
	for i := 0; i < count[2]; i++ {
		args, err := next(3)
		if err != nil {
			return nil, err
		}
		f, err := ints(args, count[1])
		if err != nil {
			return nil, err
		}
		s.Faces = append(s.Faces, [3]int{f[0], f[1], f[2]})
	}
	return s, nil
}
