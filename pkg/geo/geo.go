// Package geo contains the spherical earth helpers used by the overlay.
// All functions use a mean earth radius and are meant for the short
// distances found on a single race track.
package geo

import "math"

const EarthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// Haversine returns the great circle distance between two points in kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRad(lat1), toRad(lat2)
	dPhi := phi2 - phi1
	dLambda := toRad(lon2 - lon1)
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistanceM is Haversine in meters.
func DistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	return Haversine(lat1, lon1, lat2, lon2) * 1000
}

// LocalOffset returns the east and north offset in meters of (lat,lon)
// relative to (refLat,refLon). Each axis is measured on its own with the
// other coordinate held at the reference value.
// Only valid for offsets up to roughly a kilometer.
func LocalOffset(refLat, refLon, lat, lon float64) (east, north float64) {
	east = DistanceM(refLat, refLon, refLat, lon)
	if lon < refLon {
		east = -east
	}
	north = DistanceM(refLat, refLon, lat, refLon)
	if lat < refLat {
		north = -north
	}
	return east, north
}

// Bearing returns the initial compass bearing in degrees [0,360) from the
// first to the second point.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRad(lat1), toRad(lat2)
	dLambda := toRad(lon2 - lon1)
	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return NormalizeHeading(toDeg(math.Atan2(y, x)))
}

// Destination returns the point reached when travelling meters along the
// compass bearing from (lat,lon).
func Destination(lat, lon, bearing, meters float64) (dLat, dLon float64) {
	delta := meters / (EarthRadiusKm * 1000)
	theta := toRad(bearing)
	phi1 := toRad(lat)
	lambda1 := toRad(lon)
	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))
	return toDeg(phi2), toDeg(lambda2)
}

// NormalizeHeading maps any angle in degrees to [0,360).
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}
