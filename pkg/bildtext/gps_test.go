package bildtext

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		dms  [3][2]int64
		ref  string
		want float64
	}{
		{"north", [3][2]int64{{37, 1}, {46, 1}, {0, 1}}, "N", 37.7667},
		{"south", [3][2]int64{{37, 1}, {46, 1}, {0, 1}}, "S", -37.7667},
		{"east", [3][2]int64{{2, 1}, {21, 1}, {3, 1}}, "E", 2.3508},
		{"west", [3][2]int64{{122, 1}, {25, 1}, {10, 1}}, "W", -122.4194},
		{"fractional seconds", [3][2]int64{{51, 1}, {30, 1}, {105, 10}}, "N", 51.5029},
		{"no ref", [3][2]int64{{10, 1}, {0, 1}, {0, 1}}, "", 10.0},
	}

	for _, tc := range tests {
		got := toDecimal(tc.dms, tc.ref)
		if math.Abs(got-tc.want) > 1e-3 {
			t.Errorf("%s: toDecimal(%v, %q) = %f, want %f", tc.name, tc.dms, tc.ref, got, tc.want)
		}
	}
}

func TestToDecimalHemisphereNegation(t *testing.T) {
	dms := [3][2]int64{{48, 1}, {51, 1}, {24, 1}}

	if n, s := toDecimal(dms, "N"), toDecimal(dms, "S"); n != -s {
		t.Errorf("S result %f is not the negation of N result %f", s, n)
	}

	if e, w := toDecimal(dms, "E"), toDecimal(dms, "W"); e != -w {
		t.Errorf("W result %f is not the negation of E result %f", w, e)
	}
}

func TestExtractGPSNoEXIF(t *testing.T) {
	// A freshly encoded JPEG has no EXIF block at all.
	path := filepath.Join(t.TempDir(), "plain.jpg")
	writeTestJPEG(t, path, 64, 64)

	if c := ExtractGPS(path); c != nil {
		t.Errorf("ExtractGPS(%s) = %+v, want nil", path, c)
	}
}

func TestExtractGPSMissingFile(t *testing.T) {
	if c := ExtractGPS(filepath.Join(t.TempDir(), "nope.jpg")); c != nil {
		t.Errorf("ExtractGPS on a missing file = %+v, want nil", c)
	}
}

func TestExtractGPSNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if c := ExtractGPS(path); c != nil {
		t.Errorf("ExtractGPS(%s) = %+v, want nil", path, c)
	}
}
