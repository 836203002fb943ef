// Package pointing implements component C6: the rejection chain that turns
// a (station, source, epoch) triple into either a usable PointingVector or
// a typed rejection reason (spec §4.3).
package pointing

import (
	"math"
	"time"

	"github.com/vievs/vievssched/internal/astro"
	"github.com/vievs/vievssched/internal/catalog"
	"github.com/vievs/vievssched/internal/geo"
	"github.com/vievs/vievssched/internal/scan"
	"github.com/vievs/vievssched/internal/schederr"
)

// MinSunSeparationRad is the minimum angular separation from the Sun
// allowed for an observation (spec §4.3 step 3).
const MinSunSeparationRad = 5.0 * astro.DegToRad

// Evaluate runs the rejection chain of spec §4.3 in this order: horizon
// mask, elevation floor (the larger of the station's and the source's
// minimum elevation), sun distance; the first failing check is the one
// reported. On success it returns az/el plus hour angle and declination,
// with no cable-wrap resolution (that is internal/kinematics' job).
func Evaluate(st *catalog.Station, src *catalog.Source, at time.Time) (scan.PointingVector, error) {
	az, el := astro.TopocentricAzEl(src.RARad, src.DecRad, st.LonRad, st.LatRad, at)

	if st.Horizon != nil && !st.Horizon.Visible(az, el) {
		return scan.PointingVector{}, schederr.New(schederr.GeometryNotVisible, "station %s: source %s below horizon mask at az=%.2f el=%.2f", st.Name, src.Name, az*astro.RadToDeg, el*astro.RadToDeg)
	}

	minEl := st.MinElevationRad
	if src.MinElevationRad != nil {
		minEl = math.Max(minEl, *src.MinElevationRad)
	}
	if el < minEl {
		return scan.PointingVector{}, schederr.New(schederr.GeometryNotVisible, "station %s: source %s elevation %.2f below floor %.2f", st.Name, src.Name, el*astro.RadToDeg, minEl*astro.RadToDeg)
	}

	sunRA, sunDec := astro.SunPosition(at)
	sunAz, sunEl := astro.TopocentricAzEl(sunRA, sunDec, st.LonRad, st.LatRad, at)
	sep := geo.SeparationAzEl(geo.AzEl{Az: az, El: el}, geo.AzEl{Az: sunAz, El: sunEl})
	if sep < MinSunSeparationRad {
		return scan.PointingVector{}, schederr.New(schederr.GeometryNotVisible, "station %s: source %s within %.2f deg of sun", st.Name, src.Name, sep*astro.RadToDeg)
	}

	lst := astro.LocalApparentSiderealTime(at, st.LonRad)
	ha := astro.HourAngle(lst, src.RARad)
	dec := src.DecRad

	return scan.PointingVector{
		Station:      st.ID,
		Source:       src.ID,
		Epoch:        at,
		AzRad:        az,
		ElRad:        el,
		HourAngleRad: &ha,
		DecRad:       &dec,
	}, nil
}

// Fast is a cheap visibility-only check used by the candidate enumerator
// (component C9): it runs Evaluate and keeps only whether it succeeded
// (spec §4.3: "a fast evaluator may skip wrap resolution for enumeration").
func Fast(st *catalog.Station, src *catalog.Source, at time.Time) bool {
	_, err := Evaluate(st, src, at)
	return err == nil
}
