package common

import (
	"errors"
	"testing"
)

func TestValidateSampling(t *testing.T) {
	ok := [][4]int{
		{1, 1, 1, 1},
		{1, 1, 2, 2},
		{2, 2, 2, 2},
		{1, 1, 4, 1},
		{1, 2, 2, 4},
		{1, 1, 4, 4},
	}
	for _, s := range ok {
		if err := ValidateSampling(s[0], s[1], s[2], s[3]); err != nil {
			t.Errorf("%v: %v", s, err)
		}
	}
	bad := [][4]int{
		{1, 1, 3, 1},
		{2, 1, 3, 1},
		{0, 1, 1, 1},
		{5, 1, 5, 1},
		{1, 1, 1, 3},
	}
	for _, s := range bad {
		if err := ValidateSampling(s[0], s[1], s[2], s[3]); !errors.Is(err, ErrUnsupportedSamplingFactor) {
			t.Errorf("%v: expected ErrUnsupportedSamplingFactor, got %v", s, err)
		}
	}
}

func TestUpsampleNearest(t *testing.T) {
	src := []byte{10, 20, 30, 40}
	dst := make([]byte, 16)
	Upsample(dst, 4, 4, 4, src, 2, 2, 2, 2, 2, UpsampleNearest)
	want := []byte{
		10, 10, 20, 20,
		10, 10, 20, 20,
		30, 30, 40, 40,
		30, 30, 40, 40,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("got %v, want %v", dst, want)
		}
	}
}

func TestUpsampleLinearTriangle(t *testing.T) {
	// One row, factor 2: outputs are 3/4 of the nearer sample plus 1/4 of
	// the farther, with the edges clamped.
	src := []byte{0, 100}
	dst := make([]byte, 4)
	Upsample(dst, 4, 4, 1, src, 2, 2, 1, 2, 1, UpsampleLinear)
	want := []byte{0, 25, 75, 100}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("got %v, want %v", dst, want)
		}
	}
}

func TestUpsampleConstantPlane(t *testing.T) {
	for _, f := range [][2]int{{2, 1}, {1, 2}, {2, 2}, {4, 1}, {4, 4}} {
		srcW, srcH := 3, 3
		src := make([]byte, srcW*srcH)
		for i := range src {
			src[i] = 77
		}
		dstW, dstH := srcW*f[0]-1, srcH*f[1]-1
		for _, m := range []UpsampleMethod{UpsampleLinear, UpsampleNearest} {
			dst := make([]byte, dstW*dstH)
			Upsample(dst, dstW, dstW, dstH, src, srcW, srcW, srcH, f[0], f[1], m)
			for i, v := range dst {
				if v != 77 {
					t.Fatalf("factor %v %v: sample %d = %d", f, m, i, v)
				}
			}
		}
	}
}

func TestSubsampleAverages(t *testing.T) {
	src := []byte{
		10, 20, 30, 41,
		30, 40, 50, 60,
		90, 90, 7, 7,
	}
	dst := make([]byte, 4)
	Subsample(dst, 2, 2, 2, src, 4, 4, 3, 2, 2)
	// The bottom row of footprints repeats the last source row.
	want := []byte{25, 45, 90, 7}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("got %v, want %v", dst, want)
		}
	}
}
