package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/denoise"
	"github.com/seqsense/pcdenoise/gts"
	"github.com/seqsense/pcdenoise/pcd"
	"github.com/seqsense/pcdenoise/pcd/filter"
	"github.com/seqsense/pcdenoise/pcd/filter/cluster"
	"github.com/seqsense/pcdenoise/pcd/filter/stride"
	"github.com/seqsense/pcdenoise/pcd/filter/voxelgrid"
	"github.com/seqsense/pcdenoise/registration"
	"github.com/seqsense/pcdenoise/smoother"
	"github.com/seqsense/pcdenoise/triangulation"
)

func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: pcdenoise "+usages[name])
		fs.PrintDefaults()
	}
	quiet := fs.Bool("quiet", false, "suppress log output")
	return fs, quiet
}

func setQuiet(quiet bool) {
	if quiet {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
}

func positional(fs *flag.FlagSet, n int) ([]string, error) {
	if fs.NArg() != n {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected %d, got %d", errArgumentNumber, n, fs.NArg())
	}
	return fs.Args(), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadPoints reads xyz, PCD or the vertices of a GTS surface.
func loadPoints(path string) (pcd.PointCloud, error) {
	if !strings.EqualFold(filepath.Ext(path), ".gts") {
		return pcd.Load(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := gts.Read(f)
	if err != nil {
		return nil, essentials.AddCtx("load "+path, err)
	}
	return s.Vertices, nil
}

// saveSurface writes the triangulation of pc as GTS or STL depending on
// the extension of path. ok is false for other extensions.
func saveSurface(path string, pc pcd.PointCloud, t triangulation.Triangulation) (ok bool, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gts":
		f, err := os.Create(path)
		if err != nil {
			return true, err
		}
		if err := gts.Write(f, pc, t); err != nil {
			f.Close()
			return true, essentials.AddCtx("save "+path, err)
		}
		return true, f.Close()
	case ".stl":
		return true, essentials.AddCtx("save "+path, triangulation.Mesh(pc, t).SaveGroupedSTL(path))
	}
	return false, nil
}

func runDenoise(args []string) error {
	fs, quiet := newFlagSet("denoise")
	cfg := defaultConfig()
	cfg.bindFlags(fs)
	configPath := fs.String("config", "", "YAML configuration file; explicitly set flags take precedence")
	meshPath := fs.String("mesh", "", "save the final triangulation (.stl or .gts)")
	if err := parseConfig(fs, &cfg, configPath, args); err != nil {
		return err
	}
	files, err := positional(fs, 2)
	if err != nil {
		return err
	}
	setQuiet(*quiet)

	log.Println("Loading", files[0])
	in, err := loadPoints(files[0])
	if err != nil {
		return err
	}
	log.Printf("Loaded %d points", len(in))

	var voxel filter.Filter
	if cfg.VoxelSize > 0 {
		voxel = voxelgrid.New(model3d.XYZ(cfg.VoxelSize, cfg.VoxelSize, cfg.VoxelSize))
	}
	var outlier filter.Filter
	if cfg.ClusterMinPoints > 0 {
		outlier = cluster.New(cfg.ClusterVoxelSize, cfg.ClusterMinPoints)
	}
	points, err := filter.Chain(stride.New(cfg.SubSamplingStride), voxel, outlier).Filter(in)
	if err != nil {
		return err
	}
	if len(points) != len(in) {
		log.Printf("Filtered to %d points", len(points))
	}

	hist, err := newPassHistory(cfg.DumpPasses, filepath.Ext(files[1]))
	if err != nil {
		return err
	}
	var errHistory error
	d := &denoise.Denoiser{
		Triangulator:   &triangulation.Delaunay{Projection: cfg.Projection},
		Iterations:     cfg.Iterations,
		NeighborDegree: cfg.NeighborDegree,
		Policy:         cfg.Policy,
		Workers:        cfg.Workers,
		OnPass: func(s denoise.PassStats, pc pcd.PointCloud) {
			log.Println(s)
			if err := hist.push(s, pc); err != nil && errHistory == nil {
				errHistory = err
			}
		},
	}

	ctx, cancel := signalContext()
	defer cancel()
	log.Printf("Denoising: %d iterations, degree %d, %v projection", cfg.Iterations, cfg.NeighborDegree, cfg.Projection)
	out, err := d.Run(ctx, points)
	if err != nil {
		return err
	}
	if errHistory != nil {
		return errHistory
	}
	if n := hist.skipped(); n > 0 {
		log.Printf("%d vertex updates skipped", n)
	}
	if !*quiet {
		hist.writeSummary(os.Stderr)
	}

	log.Println("Saving", files[1])
	if err := pcd.Save(files[1], out); err != nil {
		return err
	}
	if *meshPath != "" {
		tri, err := d.Triangulator.Triangulate(out)
		if err != nil {
			return err
		}
		log.Println("Saving mesh", *meshPath)
		if ok, err := saveSurface(*meshPath, out, tri); !ok {
			return fmt.Errorf("unsupported mesh format: %s", *meshPath)
		} else if err != nil {
			return err
		}
	}
	return nil
}

func runSmooth(args []string) error {
	fs, quiet := newFlagSet("smooth")
	exe := fs.String("exe", "./smoother", "smoother executable")
	sigmaF := fs.Float64("sigma-f", 1, "spatial kernel width relative to the mean edge length")
	sigmaG := fs.Float64("sigma-g", 1, "influence kernel width relative to the mean edge length")
	mode := fs.String("mode", "gaussian", "distribution (gaussian, exponential, gamma or 1-3)")
	var proj triangulation.Projection
	fs.TextVar(&proj, "projection", proj, "triangulation plane (pca, ransac or xy)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files, err := positional(fs, 2)
	if err != nil {
		return err
	}
	setQuiet(*quiet)

	dist, err := smoother.ParseDistribution(*mode)
	if err != nil {
		return err
	}
	params := smoother.Params{SigmaF: *sigmaF, SigmaG: *sigmaG, Distribution: dist}
	if err := params.Validate(); err != nil {
		return err
	}

	in, err := loadPoints(files[0])
	if err != nil {
		return err
	}
	log.Printf("Triangulating %d points", len(in))
	tri, err := (&triangulation.Delaunay{Projection: proj}).Triangulate(in)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	r := &smoother.Runner{Path: *exe}
	if !*quiet {
		r.Stderr = os.Stderr
	}
	log.Printf("Smoothing with %s %v", *exe, params.Args())
	s, err := r.Smooth(ctx, in, tri, params)
	if err != nil {
		return err
	}

	log.Println("Saving", files[1])
	if strings.EqualFold(filepath.Ext(files[1]), ".gts") {
		f, err := os.Create(files[1])
		if err != nil {
			return err
		}
		if err := s.Encode(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return pcd.Save(files[1], s.Vertices)
}

func runRegister(args []string) error {
	fs, quiet := newFlagSet("register")
	opts := registration.DefaultOptions()
	fs.Float64Var(&opts.MaxCorrespondenceDistance, "threshold", opts.MaxCorrespondenceDistance, "maximum correspondence distance")
	fs.Float64Var(&opts.Padding, "padding", opts.Padding, "padding of the overlap region")
	fs.IntVar(&opts.MaxIteration, "max-iteration", opts.MaxIteration, "maximum ICP iterations")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "sampling seed")
	method := fs.String("method", "both", "ICP error metric (point-to-point, point-to-plane or both)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files, err := positional(fs, 2)
	if err != nil {
		return err
	}
	setQuiet(*quiet)

	methods := []registration.Method{registration.MethodPointToPoint, registration.MethodPointToPlane}
	if !strings.EqualFold(*method, "both") {
		m, err := registration.ParseMethod(*method)
		if err != nil {
			return err
		}
		methods = []registration.Method{m}
	}

	source, err := loadPoints(files[0])
	if err != nil {
		return err
	}
	target, err := loadPoints(files[1])
	if err != nil {
		return err
	}
	log.Printf("Registering %d source points to %d target points", len(source), len(target))

	initial := registration.Evaluate(source, target, opts.MaxCorrespondenceDistance, registration.Identity())
	fmt.Printf("initial: %v\n", initial)
	for _, m := range methods {
		opts.Method = m
		res, err := registration.Align(source, target, opts)
		if err != nil {
			return essentials.AddCtx(m.String(), err)
		}
		log.Println(res.Stat)
		fmt.Printf("%v: %v\n", m, res.After)
		fmt.Printf("transformation: %v\n", res.Transformation)
	}
	return nil
}

func runConvert(args []string) error {
	fs, quiet := newFlagSet("convert")
	var proj triangulation.Projection
	fs.TextVar(&proj, "projection", proj, "triangulation plane for .gts and .stl output (pca, ransac or xy)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files, err := positional(fs, 2)
	if err != nil {
		return err
	}
	setQuiet(*quiet)

	pc, err := loadPoints(files[0])
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(files[1])) {
	case ".gts", ".stl":
		tri, err := (&triangulation.Delaunay{Projection: proj}).Triangulate(pc)
		if err != nil {
			return err
		}
		_, err = saveSurface(files[1], pc, tri)
		return err
	}
	return pcd.Save(files[1], pc)
}
