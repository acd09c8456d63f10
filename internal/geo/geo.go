// Package geo provides great-circle distance math for candidate resolution.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used for haversine distances.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two points given in decimal degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BoundingBox is a latitude/longitude rectangle that encloses a radius
// around a center point. It is a coarse prefilter; points inside the box
// still need a precise DistanceKm check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Bounds returns a bounding box around (lat, lon) with the given radius in
// kilometers. Near the poles the longitude span degenerates; the box is
// clamped to the full valid ranges rather than wrapping across the
// antimeridian, which keeps the prefilter a superset of the true circle for
// the latitudes a property search realistically uses.
func Bounds(lat, lon, radiusKm float64) BoundingBox {
	dLat := degrees(radiusKm / EarthRadiusKm)

	cos := math.Cos(radians(lat))
	var dLon float64
	if cos <= 1e-9 {
		dLon = 180
	} else {
		dLon = degrees(radiusKm / (EarthRadiusKm * cos))
	}

	return BoundingBox{
		MinLat: clamp(lat-dLat, -90, 90),
		MaxLat: clamp(lat+dLat, -90, 90),
		MinLon: clamp(lon-dLon, -180, 180),
		MaxLon: clamp(lon+dLon, -180, 180),
	}
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// RoundKm rounds a distance to two decimals for display.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
