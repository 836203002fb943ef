// Package geo collects the small rotation/projection helpers shared by the
// time/coordinate (astro), antenna kinematics and flux-density packages, so
// the same gonum vector math is not hand-rolled three times.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AzEl is a horizontal-coordinate pointing direction, radians.
type AzEl struct {
	Az, El float64
}

// Vec returns the unit vector pointing at the given azimuth/elevation in a
// station-local East-North-Up frame (East=x, North=y, Up=z).
func (p AzEl) Vec() r3.Vec {
	ce, se := math.Cos(p.El), math.Sin(p.El)
	ca, sa := math.Cos(p.Az), math.Sin(p.Az)
	return r3.Vec{X: ce * sa, Y: ce * ca, Z: se}
}

// AngularSeparation returns the great-circle angle in radians between two
// directions given as unit vectors.
func AngularSeparation(a, b r3.Vec) float64 {
	d := r3.Dot(a, b)
	if d > 1 {
		d = 1
	}
	if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// SeparationAzEl is AngularSeparation expressed directly on az/el pairs.
func SeparationAzEl(a, b AzEl) float64 {
	return AngularSeparation(a.Vec(), b.Vec())
}

// ENUToXYZ rotates a local East-North-Up vector into geocentric XYZ at the
// given geodetic longitude/latitude (radians), using the standard station
// rotation matrix (e.g. Vallado, Fundamentals of Astrodynamics, eq. 3-25).
func ENUToXYZ(enu r3.Vec, lon, lat float64) r3.Vec {
	sl, cl := math.Sin(lon), math.Cos(lon)
	sp, cp := math.Sin(lat), math.Cos(lat)
	return r3.Vec{
		X: -sl*enu.X - sp*cl*enu.Y + cp*cl*enu.Z,
		Y: cl*enu.X - sp*sl*enu.Y + cp*sl*enu.Z,
		Z: cp*enu.Y + sp*enu.Z,
	}
}

// XYZToENU is the inverse of ENUToXYZ.
func XYZToENU(xyz r3.Vec, lon, lat float64) r3.Vec {
	sl, cl := math.Sin(lon), math.Cos(lon)
	sp, cp := math.Sin(lat), math.Cos(lat)
	return r3.Vec{
		X: -sl*xyz.X + cl*xyz.Y,
		Y: -sp*cl*xyz.X - sp*sl*xyz.Y + cp*xyz.Z,
		Z: cp*cl*xyz.X + cp*sl*xyz.Y + sp*xyz.Z,
	}
}

// GeodeticOf converts a geocentric XYZ position (metres, WGS84-ish sphere
// approximation) to longitude/latitude/height, sufficient for logging and
// for the ENU rotations above; spec §1 excludes a precise geodetic model.
func GeodeticOf(xyz r3.Vec) (lon, lat, height float64) {
	const a = 6378137.0
	lon = math.Atan2(xyz.Y, xyz.X)
	p := math.Hypot(xyz.X, xyz.Y)
	lat = math.Atan2(xyz.Z, p)
	height = math.Hypot(p, xyz.Z) - a
	return lon, lat, height
}

// UVProjection projects a baseline vector (geocentric, metres) onto the
// plane perpendicular to the source direction, returning the (u,v) radius
// in metres used by the flux-density and scan-duration models (spec §4.4).
func UVProjection(baseline r3.Vec, sourceDir r3.Vec) float64 {
	along := r3.Scale(r3.Dot(baseline, sourceDir), sourceDir)
	perp := r3.Sub(baseline, along)
	return r3.Norm(perp)
}
