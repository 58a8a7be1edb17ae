package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unixpickle/essentials"

	"github.com/seqsense/pcdenoise/denoise"
	"github.com/seqsense/pcdenoise/triangulation"
)

// Config of the denoise command. Every field can be given in the YAML
// file passed by -config and overridden by the corresponding flag.
type Config struct {
	// SubSamplingStride keeps every n-th input point. 0 and 1 keep all.
	SubSamplingStride int `yaml:"sub_sampling_stride"`
	// VoxelSize merges the points of each voxel into their centroid. 0 disables.
	VoxelSize float64 `yaml:"voxel_size"`
	// ClusterMinPoints drops the clusters of connected voxels of
	// ClusterVoxelSize having fewer points. 0 disables.
	ClusterMinPoints int                      `yaml:"cluster_min_points"`
	ClusterVoxelSize float64                  `yaml:"cluster_voxel_size"`
	Iterations       int                      `yaml:"iterations"`
	NeighborDegree   int                      `yaml:"neighbor_degree"`
	Policy           denoise.Policy           `yaml:"policy"`
	Projection       triangulation.Projection `yaml:"projection"`
	Workers          int                      `yaml:"workers"`
	// DumpPasses is a directory receiving the point cloud of every pass.
	DumpPasses string `yaml:"dump_passes"`
}

func defaultConfig() Config {
	return Config{
		Iterations:     1,
		NeighborDegree: 1,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.SubSamplingStride < 0:
		return fmt.Errorf("sub_sampling_stride must be >= 0, got %d", c.SubSamplingStride)
	case c.VoxelSize < 0:
		return fmt.Errorf("voxel_size must be >= 0, got %g", c.VoxelSize)
	case c.ClusterMinPoints < 0:
		return fmt.Errorf("cluster_min_points must be >= 0, got %d", c.ClusterMinPoints)
	case c.ClusterVoxelSize < 0:
		return fmt.Errorf("cluster_voxel_size must be >= 0, got %g", c.ClusterVoxelSize)
	case c.ClusterMinPoints > 0 && c.ClusterVoxelSize == 0:
		return fmt.Errorf("cluster_voxel_size must be set with cluster_min_points")
	case c.Iterations < 1:
		return fmt.Errorf("iterations must be >= 1, got %d", c.Iterations)
	case c.NeighborDegree < 0:
		return fmt.Errorf("neighbor_degree must be >= 0, got %d", c.NeighborDegree)
	case c.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.SubSamplingStride, "stride", c.SubSamplingStride, "keep every n-th input point (0 keeps all)")
	fs.Float64Var(&c.VoxelSize, "voxel-size", c.VoxelSize, "voxel grid downsampling size (0 disables)")
	fs.IntVar(&c.ClusterMinPoints, "cluster-min-points", c.ClusterMinPoints, "drop clusters having fewer points (0 disables)")
	fs.Float64Var(&c.ClusterVoxelSize, "cluster-voxel-size", c.ClusterVoxelSize, "voxel size connecting the points of a cluster")
	fs.IntVar(&c.Iterations, "iterations", c.Iterations, "number of denoising passes")
	fs.IntVar(&c.NeighborDegree, "degree", c.NeighborDegree, "facet adjacency hops used for normal estimation")
	fs.TextVar(&c.Policy, "policy", c.Policy, "vertex failure policy (skip or abort)")
	fs.TextVar(&c.Projection, "projection", c.Projection, "triangulation plane (pca, ransac or xy)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of worker goroutines (0 uses all CPUs)")
	fs.StringVar(&c.DumpPasses, "dump-passes", c.DumpPasses, "directory to write the point cloud of every pass")
}

// loadConfig reads a YAML file on top of the defaults. Unknown keys are
// rejected.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, essentials.AddCtx("config "+path, err)
	}
	return c, nil
}

// parseConfig parses the flags of fs bound by bindFlags. If configPath
// is set after parsing, the file is loaded and the explicitly set flags
// are applied on top of it.
func parseConfig(fs *flag.FlagSet, c *Config, configPath *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		override := flag.NewFlagSet("override", flag.ContinueOnError)
		loaded.bindFlags(override)
		var errOverride error
		fs.Visit(func(f *flag.Flag) {
			if override.Lookup(f.Name) == nil || errOverride != nil {
				return
			}
			errOverride = override.Set(f.Name, f.Value.String())
		})
		if errOverride != nil {
			return errOverride
		}
		*c = loaded
	}
	return c.Validate()
}
