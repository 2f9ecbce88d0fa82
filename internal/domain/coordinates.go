package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

const earthRadiusKm = 6371.0

// DistanceKM returns the great-circle (Haversine) distance to other, in km.
func (c Coordinates) DistanceKM(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c2 := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c2
}

// Finite reports whether both components hold a usable coordinate value.
func (c Coordinates) Finite() bool {
	return !math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0) &&
		!math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0)
}
