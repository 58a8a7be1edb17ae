package filter

import (
	"github.com/seqsense/pcdenoise/pcd"
)

type Filter interface {
	Filter(pcd.PointCloud) (pcd.PointCloud, error)
}

type chain []Filter

// Chain applies filters in order. Nil filters are skipped.
func Chain(filters ...Filter) Filter {
	var c chain
	for _, f := range filters {
		if f != nil {
			c = append(c, f)
		}
	}
	return c
}

func (c chain) Filter(pc pcd.PointCloud) (pcd.PointCloud, error) {
	for _, f := range c {
		var err error
		if pc, err = f.Filter(pc); err != nil {
			return nil, err
		}
	}
	return pc, nil
}
