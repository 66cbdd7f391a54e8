package main

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula, in meters.
const earthRadiusM = 6371.0 * 1000

// round2 rounds to 2 decimal places; every numeric route metric is reported
// at this precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round0 rounds to the nearest whole number.
func round0(v float64) float64 {
	return math.Round(v)
}

// haversineM returns the great-circle distance in meters between two
// latitude/longitude pairs (degrees, WGS-84).
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// routeMetrics is the aggregate output of a GPS route: distances in meters,
// speeds in whatever unit the device reported, elevations in meters.
type routeMetrics struct {
	TotalDistance float64 `json:"total_distance"`
	AverageSpeed  float64 `json:"average_speed"`
	MaxSpeed      float64 `json:"max_speed"`
	ElevationGain float64 `json:"elevation_gain"`
	ElevationLoss float64 `json:"elevation_loss"`
	TotalPoints   int     `json:"total_points"`
}

// computeRouteMetrics aggregates an ordered sequence of location samples.
// Distance is only ever computed between adjacent samples and summed. Samples
// without an explicit speed are excluded from both the average and the max
// (not treated as zero), and elevation deltas are only counted when both
// adjacent samples carry an altitude — no interpolation. Fewer than 2 samples
// is a defined boundary case: all metrics are zero.
func computeRouteMetrics(points []gpsPoint) routeMetrics {
	m := routeMetrics{TotalPoints: len(points)}
	if len(points) < 2 {
		return m
	}

	var totalDistance, maxSpeed, gain, loss float64
	var speedSum float64
	speedCount := 0

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]

		totalDistance += haversineM(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)

		if cur.Speed != nil {
			speedSum += *cur.Speed
			speedCount++
			if *cur.Speed > maxSpeed {
				maxSpeed = *cur.Speed
			}
		}

		if cur.Altitude != nil && prev.Altitude != nil {
			delta := *cur.Altitude - *prev.Altitude
			if delta > 0 {
				gain += delta
			} else {
				loss += math.Abs(delta)
			}
		}
	}

	avgSpeed := 0.0
	if speedCount > 0 {
		avgSpeed = speedSum / float64(speedCount)
	}

	m.TotalDistance = round2(totalDistance)
	m.AverageSpeed = round2(avgSpeed)
	m.MaxSpeed = round2(maxSpeed)
	m.ElevationGain = round2(gain)
	m.ElevationLoss = round2(loss)
	return m
}
