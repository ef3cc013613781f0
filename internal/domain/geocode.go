package domain

import "encoding/json"

// Location - координаты точки в порядке {lat, lng}
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResult - каноническая схема результата геокодирования,
// не зависящая от провайдера
type GeocodeResult struct {
	Address  string          `json:"address"`
	Location Location        `json:"location"`
	PlaceID  string          `json:"placeId"`
	Types    []string        `json:"types"`
	Source   Provider        `json:"source"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// GeocodeIntermediate - помеченный тегом провайдера промежуточный результат.
// Ровно одно из полей Google/Mapbox/OSM заполнено и совпадает с тегом.
type GeocodeIntermediate struct {
	Provider Provider
	Google   *GoogleGeocodeResult
	Mapbox   *MapboxFeature
	OSM      *NominatimPlace
	Raw      json.RawMessage
}
