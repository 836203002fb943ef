package astro

import (
	"math"
	"testing"
	"time"
)

func TestMJDRoundTrip(t *testing.T) {
	ref := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	mjd := MJD(ref)
	// 2020-01-01T12:00:00 UTC is MJD 58849.5
	if math.Abs(mjd-58849.5) > 1e-6 {
		t.Fatalf("MJD(%s) = %v, want ~58849.5", ref, mjd)
	}
	back := TimeFromMJD(mjd)
	if back.Sub(ref) > time.Second || ref.Sub(back) > time.Second {
		t.Fatalf("round trip drifted: got %s want %s", back, ref)
	}
}

func TestGMSTMonotonic(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(6 * time.Hour)
	g0 := GMST(t0)
	g1 := GMST(t1)
	delta := g1 - g0
	if delta < 0 {
		delta += 2 * math.Pi
	}
	// six UT hours is close to pi/2 radians of sidereal rotation.
	if math.Abs(delta-math.Pi/2) > 0.05 {
		t.Fatalf("GMST delta over 6h = %v rad, want ~pi/2", delta)
	}
}

func TestTopocentricZenith(t *testing.T) {
	// A source exactly at the station's local zenith (ra = LST, dec = lat)
	// must report elevation ~90 degrees.
	station := time.Date(2020, 6, 21, 0, 0, 0, 0, time.UTC)
	lat := 45.0 * DegToRad
	lon := 10.0 * DegToRad
	lst := LocalApparentSiderealTime(station, lon)
	az, el := TopocentricAzEl(lst, lat, lon, lat, station)
	_ = az
	if math.Abs(el-math.Pi/2) > 1e-6 {
		t.Fatalf("elevation at zenith = %v rad, want pi/2", el)
	}
}

func TestSunPositionBounds(t *testing.T) {
	ra, dec := SunPosition(time.Date(2020, 6, 21, 0, 0, 0, 0, time.UTC))
	if ra < 0 || ra > 2*math.Pi {
		t.Fatalf("ra out of range: %v", ra)
	}
	if math.Abs(dec) > 24*DegToRad {
		t.Fatalf("dec out of obliquity bounds: %v", dec)
	}
}
