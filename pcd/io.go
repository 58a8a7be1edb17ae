package pcd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
)

type Format int

const (
	FormatXYZ Format = iota
	FormatPCD
)

// FormatOf guesses the file format from the extension.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".pcd") {
		return FormatPCD
	}
	return FormatXYZ
}

// UnmarshalPCD reads x, y and z fields of a PCD stream.
func UnmarshalPCD(r io.Reader) (PointCloud, error) {
	pp, err := pc.Unmarshal(r)
	if err != nil {
		return nil, err
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	out := make(PointCloud, 0, pp.Points)
	for ; it.IsValid(); it.Incr() {
		v := it.Vec3()
		out = append(out, model3d.XYZ(float64(v[0]), float64(v[1]), float64(v[2])))
	}
	return out, nil
}

// MarshalPCD writes ra as a binary PCD stream with float32 x, y and z fields.
func MarshalPCD(w io.Writer, ra Vec3RandomAccessor) error {
	n := ra.Len()
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z"},
			Size:      []int{4, 4, 4},
			Type:      []string{"F", "F", "F"},
			Count:     []int{1, 1, 1},
			Width:     n,
			Height:    1,
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
		},
		Points: n,
	}
	pp.Data = make([]byte, n*pp.Stride())
	if n > 0 {
		it, err := pp.Vec3Iterator()
		if err != nil {
			return err
		}
		for i := 0; i < n && it.IsValid(); i++ {
			p := ra.Vec3At(i)
			it.SetVec3(mat.Vec3{float32(p.X), float32(p.Y), float32(p.Z)})
			it.Incr()
		}
	}
	return pc.Marshal(pp, w)
}

// Load reads a point cloud file. ".pcd" files are parsed as PCD, anything
// else as xyz text.
func Load(path string) (PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out PointCloud
	switch FormatOf(path) {
	case FormatPCD:
		out, err = UnmarshalPCD(f)
	default:
		out, err = ReadXYZ(f)
	}
	return out, essentials.AddCtx("load "+path, err)
}

// Save writes a point cloud file in the format chosen by the extension.
func Save(path string, ra Vec3RandomAccessor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch FormatOf(path) {
	case FormatPCD:
		err = MarshalPCD(f, ra)
	default:
		err = WriteXYZ(f, ra)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return essentials.AddCtx("save "+path, err)
}
