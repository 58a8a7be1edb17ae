// Package stride keeps every n-th point of a point cloud.
package stride

import (
	"errors"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/pcd/filter"
)

var ErrNegativeStride = errors.New("negative stride")

type strideFilter struct {
	n int
}

// New returns a filter keeping points 0, n, 2n, ... in input order.
// n of 0 or 1 keeps every point.
func New(n int) filter.Filter {
	return &strideFilter{n: n}
}

func (f *strideFilter) Filter(pc pcd.PointCloud) (pcd.PointCloud, error) {
	switch {
	case f.n < 0:
		return nil, ErrNegativeStride
	case f.n <= 1:
		return pc.Clone(), nil
	}
	out := make(pcd.PointCloud, 0, (len(pc)+f.n-1)/f.n)
	for i := 0; i < len(pc); i += f.n {
		out = append(out, pc[i])
	}
	return out, nil
}
