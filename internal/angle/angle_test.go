package angle

import (
	"math"
	"testing"
)

func TestNormalizeRadians_Range(t *testing.T) {
	inputs := []float64{
		0, 0.1, math.Pi, 2 * math.Pi, 2*math.Pi + 0.25,
		-0.1, -math.Pi, -3 * math.Pi,
		100 * math.Pi, 1e6, -1e6,
	}
	for _, in := range inputs {
		got := NormalizeRadians(in)
		if got < 0 || got >= 2*math.Pi {
			t.Fatalf("NormalizeRadians(%v)=%v outside [0,2π)", in, got)
		}
	}
}

func TestNormalizeDegrees_Range(t *testing.T) {
	inputs := []float64{0, 1, 359.9, 360, 361, 720.5, -1, -180, -725, 1e9}
	for _, in := range inputs {
		got := NormalizeDegrees(in)
		if got < 0 || got >= 360 {
			t.Fatalf("NormalizeDegrees(%v)=%v outside [0,360)", in, got)
		}
	}
}

func TestNormalize_Zero(t *testing.T) {
	if got := NormalizeRadians(0); got != 0 {
		t.Fatalf("NormalizeRadians(0)=%v want 0", got)
	}
	if got := NormalizeDegrees(0); got != 0 {
		t.Fatalf("NormalizeDegrees(0)=%v want 0", got)
	}
}

func TestNormalizeRadians_Idempotent(t *testing.T) {
	inputs := []float64{0, 0.5, math.Pi, 3 * math.Pi, -2.5, 17.3}
	for _, in := range inputs {
		once := NormalizeRadians(in)
		twice := NormalizeRadians(once)
		if math.Abs(once-twice) > 1e-12 {
			t.Fatalf("NormalizeRadians not idempotent for %v: %v then %v", in, once, twice)
		}
	}
}

func TestNormalizeRadians_NegativeHalfPeriodCorrection(t *testing.T) {
	// Negative inputs get +π before abs, matching the firmware.
	// -π/2 + π = π/2, abs, mod => π/2.
	got := NormalizeRadians(-math.Pi / 2)
	want := math.Pi / 2
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("NormalizeRadians(-π/2)=%v want %v", got, want)
	}

	// -3π/2 + π = -π/2, abs => π/2, mod => π/2.
	got = NormalizeRadians(-3 * math.Pi / 2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("NormalizeRadians(-3π/2)=%v want %v", got, want)
	}
}

func TestNormalizeDegrees_Reduction(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{540, 180},
		{725, 5},
		{-90, 90},  // -90+180=90
		{-270, 90}, // -270+180=-90, abs=90
	}
	for _, c := range cases {
		got := NormalizeDegrees(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("NormalizeDegrees(%v)=%v want %v", c.in, got, c.want)
		}
	}
}
