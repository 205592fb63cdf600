package services

import "hash/fnv"

// routePalette holds visually distinct stroke colors for simultaneous routes.
var routePalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#42d4f4", "#f032e6", "#bfef45",
	"#469990", "#9a6324", "#800000", "#000075",
}

// StyleKeyFor returns the stable color key for a courier.
func StyleKeyFor(courierID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(courierID))
	return routePalette[h.Sum32()%uint32(len(routePalette))]
}
