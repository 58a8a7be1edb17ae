package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/seqsense/pcdenoise/denoise"
	"github.com/seqsense/pcdenoise/pcd"
)

// passHistory records the statistics of every denoising pass. If dir is
// set, the point cloud of every pass is saved there with the extension ext.
type passHistory struct {
	dir   string
	ext   string
	stats []denoise.PassStats
}

func newPassHistory(dir, ext string) (*passHistory, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &passHistory{dir: dir, ext: ext}, nil
}

func (h *passHistory) path(pass int) string {
	return filepath.Join(h.dir, fmt.Sprintf("pass_%03d%s", pass, h.ext))
}

func (h *passHistory) push(s denoise.PassStats, pc pcd.PointCloud) error {
	h.stats = append(h.stats, s)
	if h.dir == "" {
		return nil
	}
	return pcd.Save(h.path(s.Pass), pc)
}

func (h *passHistory) skipped() int {
	var n int
	for _, s := range h.stats {
		n += s.Skipped
	}
	return n
}

func (h *passHistory) writeSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "pass\tpoints\tfacets\tskipped\tmax offset\tmean offset\telapsed\t")
	for _, s := range h.stats {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.6g\t%.6g\t%v\t\n",
			s.Pass, s.Points, s.Facets, s.Skipped, s.MaxOffset, s.MeanOffset, s.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}
