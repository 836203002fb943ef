package horizon

import (
	"math"
	"testing"
)

func deg(d float64) float64 { return d * math.Pi / 180.0 }

func TestLineMaskInterpolatesAndTies(t *testing.T) {
	m := NewLineMask([]float64{deg(0), deg(90), deg(180), deg(270)}, []float64{deg(10), deg(20), deg(10), deg(20)})
	if !m.Visible(deg(45), deg(15)) {
		t.Fatalf("expected visible at midpoint elevation")
	}
	if m.Visible(deg(45), deg(14.999)) {
		t.Fatalf("expected not visible just below interpolated mask")
	}
	// exact tie is visible
	if !m.Visible(deg(0), deg(10)) {
		t.Fatalf("expected tie to be visible")
	}
}

func TestLineMaskWrapsAround(t *testing.T) {
	m := NewLineMask([]float64{deg(350), deg(10)}, []float64{deg(5), deg(15)})
	if !m.Visible(deg(0), deg(10)) {
		t.Fatalf("expected wrap-around interpolation to be visible at 10 deg el")
	}
}

func TestStepMaskConstantPerBin(t *testing.T) {
	m := NewStepMask([]float64{deg(0), deg(90), deg(180)}, []float64{deg(5), deg(20), deg(5)})
	if !m.Visible(deg(45), deg(5)) {
		t.Fatalf("expected bin [0,90) to require only 5 deg")
	}
	if m.Visible(deg(100), deg(5)) {
		t.Fatalf("expected bin [90,180) to require 20 deg")
	}
}
