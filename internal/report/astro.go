package report

import (
	"fmt"
	"math"
	"time"
)

// Low-precision solar and lunar geometry. Good to a few minutes for rise
// and set times, which is all a dashboard needs.

const (
	synodicMonth = 29.53058867 // days
	deg          = math.Pi / 180
)

// newMoonEpoch is a reference new moon (2000-01-06 18:14 UTC).
var newMoonEpoch = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

// Zenith angles for the sun event calculations, in degrees.
const (
	zenithOfficial     = 90.833
	zenithCivil        = 96
	zenithNautical     = 102
	zenithAstronomical = 108
)

func julianDay(t time.Time) float64 {
	return float64(t.UTC().Unix())/86400.0 + 2440587.5
}

// solarCoordinates returns the sun's right ascension and declination in
// radians for the given Julian day.
func solarCoordinates(jd float64) (ra, dec float64) {
	n := jd - 2451545.0
	meanLon := math.Mod(280.460+0.9856474*n, 360) * deg
	meanAnom := math.Mod(357.528+0.9856003*n, 360) * deg
	eclipticLon := meanLon + (1.915*math.Sin(meanAnom)+0.020*math.Sin(2*meanAnom))*deg
	obliquity := 23.439*deg - 0.0000004*n*deg

	ra = math.Atan2(math.Cos(obliquity)*math.Sin(eclipticLon), math.Cos(eclipticLon))
	dec = math.Asin(math.Sin(obliquity) * math.Sin(eclipticLon))
	return ra, dec
}

// sunAltitude returns the sun's altitude in degrees at time t.
func sunAltitude(t time.Time, lat, lon float64) float64 {
	jd := julianDay(t)
	ra, dec := solarCoordinates(jd)
	return altitudeOf(jd, ra, dec, lat, lon)
}

// altitudeOf converts equatorial coordinates to altitude in degrees.
func altitudeOf(jd, ra, dec, lat, lon float64) float64 {
	gmst := math.Mod(280.46061837+360.98564736629*(jd-2451545.0), 360) * deg
	hourAngle := gmst + lon*deg - ra

	latRad := lat * deg
	sinAlt := math.Sin(latRad)*math.Sin(dec) + math.Cos(latRad)*math.Cos(dec)*math.Cos(hourAngle)
	return math.Asin(sinAlt) / deg
}

// sunCrossing finds the time the sun crosses the given zenith angle on
// the side selected by rising, searching the interval [from, from+24h)
// by bisection on 1-minute samples. Returns the zero time when the sun
// never crosses (polar day or night).
func sunCrossing(from time.Time, lat, lon, zenith float64, rising bool) time.Time {
	target := 90 - zenith // altitude of the event, negative below horizon

	prev := sunAltitude(from, lat, lon)
	for m := 1; m <= 24*60; m++ {
		t := from.Add(time.Duration(m) * time.Minute)
		alt := sunAltitude(t, lat, lon)
		if rising && prev < target && alt >= target {
			return t
		}
		if !rising && prev > target && alt <= target {
			return t
		}
		prev = alt
	}
	return time.Time{}
}

// moonAge returns the moon's age in days at t, in [0, synodicMonth).
func moonAge(t time.Time) float64 {
	days := t.Sub(newMoonEpoch).Hours() / 24
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	return age
}

// moonIllumination returns the illuminated fraction in [0, 1].
func moonIllumination(age float64) float64 {
	return (1 - math.Cos(2*math.Pi*age/synodicMonth)) / 2
}

func moonPhaseName(age float64) string {
	switch {
	case age < 1.0 || age >= synodicMonth-1.0:
		return "New Moon"
	case age < 6.4:
		return "Waxing Crescent"
	case age < 8.4:
		return "First Quarter"
	case age < 13.8:
		return "Waxing Gibbous"
	case age < 15.8:
		return "Full Moon"
	case age < 21.1:
		return "Waning Gibbous"
	case age < 23.1:
		return "Last Quarter"
	default:
		return "Waning Crescent"
	}
}

// moonCoordinates returns the moon's right ascension and declination in
// radians, from a truncated ELP-style series.
func moonCoordinates(jd float64) (ra, dec float64) {
	n := jd - 2451545.0
	eclLon := math.Mod(218.316+13.176396*n, 360) * deg
	meanAnom := math.Mod(134.963+13.064993*n, 360) * deg
	meanDist := math.Mod(93.272+13.229350*n, 360) * deg

	lon := eclLon + 6.289*deg*math.Sin(meanAnom)
	lat := 5.128 * deg * math.Sin(meanDist)
	obliquity := 23.439 * deg

	ra = math.Atan2(math.Sin(lon)*math.Cos(obliquity)-math.Tan(lat)*math.Sin(obliquity), math.Cos(lon))
	dec = math.Asin(math.Sin(lat)*math.Cos(obliquity) + math.Cos(lat)*math.Sin(obliquity)*math.Sin(lon))
	return ra, dec
}

// moonAltitude returns the moon's altitude in degrees at time t.
func moonAltitude(t time.Time, lat, lon float64) float64 {
	jd := julianDay(t)
	ra, dec := moonCoordinates(jd)
	return altitudeOf(jd, ra, dec, lat, lon)
}

// loadZone resolves the location's timezone, defaulting to UTC for an
// empty name.
func loadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	return zone, nil
}

// localTimeOrNil formats t in zone as RFC 3339, or returns nil for the
// zero time (event does not occur, e.g. polar day).
func localTimeOrNil(t time.Time, zone *time.Location) *string {
	if t.IsZero() {
		return nil
	}
	s := t.In(zone).Format(time.RFC3339)
	return &s
}
