package argo

import "strings"

// BoundingBox is an inclusive latitude/longitude box.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// regionBoxes maps each recognized region keyword to its bounding box.
// Boxes are coarse; the Pacific box covers only the western basin because
// a single box cannot cross the antimeridian.
var regionBoxes = map[string]BoundingBox{
	"arabian":       {MinLat: 5, MaxLat: 25, MinLon: 45, MaxLon: 78},
	"arctic":        {MinLat: 66, MaxLat: 90, MinLon: -180, MaxLon: 180},
	"southern":      {MinLat: -90, MaxLat: -50, MinLon: -180, MaxLon: 180},
	"mediterranean": {MinLat: 30, MaxLat: 46, MinLon: -6, MaxLon: 36},
	"indian":        {MinLat: -60, MaxLat: 30, MinLon: 20, MaxLon: 120},
	"atlantic":      {MinLat: -60, MaxLat: 68, MinLon: -80, MaxLon: 20},
	"pacific":       {MinLat: -60, MaxLat: 65, MinLon: 120, MaxLon: 180},
}

// RegionBox returns the bounding box for a region keyword (case-insensitive).
func RegionBox(region string) (BoundingBox, bool) {
	box, ok := regionBoxes[strings.ToLower(region)]
	return box, ok
}
