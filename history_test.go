package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unixpickle/model3d/model3d"

	"github.com/seqsense/pcdenoise/denoise"
	"github.com/seqsense/pcdenoise/pcd"
)

func TestPassHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "passes")
	h, err := newPassHistory(dir, ".xyz")
	if err != nil {
		t.Fatal(err)
	}
	clouds := []pcd.PointCloud{
		{model3d.XYZ(0, 0, 0), model3d.XYZ(1, 0, 0)},
		{model3d.XYZ(0, 0, 0.5), model3d.XYZ(1, 0, 0.25)},
	}
	for i, pc := range clouds {
		if err := h.push(denoise.PassStats{Pass: i, Points: 2, Skipped: i}, pc); err != nil {
			t.Fatal(err)
		}
	}
	for i, expected := range clouds {
		got, err := pcd.Load(filepath.Join(dir, []string{"pass_000.xyz", "pass_001.xyz"}[i]))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("Unexpected pass %d (-expected +got):\n%s", i, diff)
		}
	}
	if n := h.skipped(); n != 1 {
		t.Errorf("Expected 1 skipped, got %d", n)
	}

	var buf bytes.Buffer
	if err := h.writeSummary(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "mean offset") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
}

func TestPassHistory_NoDir(t *testing.T) {
	h, err := newPassHistory("", ".xyz")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.push(denoise.PassStats{}, pcd.PointCloud{model3d.XYZ(1, 2, 3)}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "pass_") {
			t.Errorf("Unexpected file %s", e.Name())
		}
	}
}
