package geofence

import "math"

const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance in meters between two points
// given in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

func (r Region) Contains(lat, lon float64) bool {
	return Distance(r.Latitude, r.Longitude, lat, lon) <= r.Radius
}
