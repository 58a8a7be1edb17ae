package pcd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unixpickle/model3d/model3d"
)

// ReadXYZ parses whitespace separated coordinates.
// Each non-empty line holds one or two x y z triples; both triples of a
// two-column line become separate points in line order.
func ReadXYZ(r io.Reader) (PointCloud, error) {
	var out PointCloud
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; s.Scan(); line++ {
		args := strings.Fields(s.Text())
		switch len(args) {
		case 0:
			continue
		case 3, 6:
		default:
			return nil, fmt.Errorf("line %d: expected 3 or 6 values, got %d", line, len(args))
		}
		var v [6]float64
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			v[i] = f
		}
		out = append(out, model3d.XYZ(v[0], v[1], v[2]))
		if len(args) == 6 {
			out = append(out, model3d.XYZ(v[3], v[4], v[5]))
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteXYZ writes one point per line.
func WriteXYZ(w io.Writer, ra Vec3RandomAccessor) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 80)
	for i := 0; i < ra.Len(); i++ {
		p := ra.Vec3At(i)
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, p.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, p.Z, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
