package domain

import "encoding/json"

// TextValue - пара человекочитаемого текста и числового значения
// (метры для расстояний, секунды для длительностей)
type TextValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// DirectionsStep - один шаг маршрута
type DirectionsStep struct {
	Instruction string    `json:"instruction"`
	Distance    TextValue `json:"distance"`
	Duration    TextValue `json:"duration"`
	Polyline    string    `json:"polyline,omitempty"`
}

// DirectionsResult - каноническая схема результата маршрутизации
type DirectionsResult struct {
	Distance TextValue        `json:"distance"`
	Duration TextValue        `json:"duration"`
	Steps    []DirectionsStep `json:"steps"`
	Polyline string           `json:"polyline"`
	Source   Provider         `json:"source"`
	Raw      json.RawMessage  `json:"raw,omitempty"`
}

// DirectionsIntermediate - промежуточный результат маршрутизации с тегом
// провайдера. Mapbox и OSM используют OSRM-совместимый формат маршрута,
// поэтому их варианты разделяют тип OSRMRoute, но ветка нормализации
// выбирается по тегу, не по типу.
type DirectionsIntermediate struct {
	Provider Provider
	Google   *GoogleRoute
	Mapbox   *OSRMRoute
	OSM      *OSRMRoute
	Raw      json.RawMessage
}
