// Package cluster removes small clusters of points, such as isolated
// outliers, before denoising.
package cluster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/pcd/filter"
	"github.com/seqsense/pcdenoise/pcd/segmentation/voxelgrid"
)

var (
	ErrInvalidResolution = errors.New("cluster resolution must be positive")
	ErrOutOfGrid         = errors.New("point out of the voxel grid")
)

type clusterFilter struct {
	resolution float64
	minPoints  int
}

// New returns a filter keeping the points of the clusters having at least
// minPoints points. Points in the same or neighboring voxels of the given
// resolution belong to the same cluster. The input order is kept.
func New(resolution float64, minPoints int) filter.Filter {
	return &clusterFilter{resolution: resolution, minPoints: minPoints}
}

func (f *clusterFilter) Filter(pc pcd.PointCloud) (pcd.PointCloud, error) {
	if !(f.resolution > 0) {
		return nil, ErrInvalidResolution
	}
	if len(pc) == 0 || f.minPoints <= 1 {
		return pc.Clone(), nil
	}
	min, max, err := pcd.MinMaxVec3(pc)
	if err != nil {
		return nil, err
	}
	vg, err := voxelgrid.NewBounds(f.resolution, min, max)
	if err != nil {
		return nil, err
	}
	for i, p := range pc {
		if !vg.Add(p, i) {
			return nil, fmt.Errorf("%w: point %d %v", ErrOutOfGrid, i, p)
		}
	}
	var keep []int
	for _, s := range vg.Segments() {
		if len(s) >= f.minPoints {
			keep = append(keep, s...)
		}
	}
	sort.Ints(keep)

	out := make(pcd.PointCloud, len(keep))
	for i, id := range keep {
		out[i] = pc[id]
	}
	return out, nil
}
