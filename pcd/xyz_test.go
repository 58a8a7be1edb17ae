package pcd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unixpickle/model3d/model3d"
)

func TestReadXYZ(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected PointCloud
		err      bool
	}{
		"SingleColumn": {
			input: "1 2 3\n4 5 6\n",
			expected: PointCloud{
				model3d.XYZ(1, 2, 3),
				model3d.XYZ(4, 5, 6),
			},
		},
		"DoubleColumn": {
			input: "1 2 3 4 5 6\n7 8 9\n",
			expected: PointCloud{
				model3d.XYZ(1, 2, 3),
				model3d.XYZ(4, 5, 6),
				model3d.XYZ(7, 8, 9),
			},
		},
		"TabsAndBlankLines": {
			input: "\n0.5\t-1e-3  2\n\n   \n",
			expected: PointCloud{
				model3d.XYZ(0.5, -1e-3, 2),
			},
		},
		"NoTrailingNewline": {
			input: "1 2 3",
			expected: PointCloud{
				model3d.XYZ(1, 2, 3),
			},
		},
		"WrongCount": {
			input: "1 2 3\n1 2\n",
			err:   true,
		},
		"NotANumber": {
			input: "1 2 x\n",
			err:   true,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			pc, err := ReadXYZ(strings.NewReader(tt.input))
			if tt.err {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, pc); diff != "" {
				t.Errorf("Unexpected points (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestWriteXYZ(t *testing.T) {
	pc := PointCloud{
		model3d.XYZ(1, -2.5, 0),
		model3d.XYZ(0.1, 1e-20, 1234.875),
	}
	var buf bytes.Buffer
	if err := WriteXYZ(&buf, pc); err != nil {
		t.Fatal(err)
	}
	expected := "1 -2.5 0\n0.1 1e-20 1234.875\n"
	if s := buf.String(); s != expected {
		t.Errorf("Expected:\n%q\nGot:\n%q", expected, s)
	}
}

func TestXYZRoundTrip(t *testing.T) {
	pc := PointCloud{
		model3d.XYZ(0.1, 0.2, 0.3),
		model3d.XYZ(-1.0/3, 2.0/3, 1e-300),
		model3d.XYZ(123456.789, -0.000123, 42),
	}
	var buf bytes.Buffer
	if err := WriteXYZ(&buf, pc); err != nil {
		t.Fatal(err)
	}
	out, err := ReadXYZ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(pc, out); diff != "" {
		t.Errorf("Round trip changed points (-expected +got):\n%s", diff)
	}
}
