package domain

// Сырые форматы ответов внешних API. Адаптеры декодируют их как есть,
// нормализатор приводит к каноническим схемам.

// GoogleGeocodeResponse - ответ Google Geocoding API
type GoogleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []GoogleGeocodeResult `json:"results"`
}

type GoogleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         GoogleGeometry `json:"geometry"`
	PlaceID          string         `json:"place_id"`
	Types            []string       `json:"types"`
}

type GoogleGeometry struct {
	Location     Location `json:"location"`
	LocationType string   `json:"location_type,omitempty"`
}

// GoogleDirectionsResponse - ответ Google Directions API
type GoogleDirectionsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Routes       []GoogleRoute `json:"routes"`
}

type GoogleRoute struct {
	Legs             []GoogleLeg    `json:"legs"`
	OverviewPolyline GooglePolyline `json:"overview_polyline"`
	Summary          string         `json:"summary,omitempty"`
}

type GoogleLeg struct {
	Distance GoogleTextValue `json:"distance"`
	Duration GoogleTextValue `json:"duration"`
	Steps    []GoogleStep    `json:"steps"`
}

type GoogleStep struct {
	HTMLInstructions string          `json:"html_instructions"`
	Distance         GoogleTextValue `json:"distance"`
	Duration         GoogleTextValue `json:"duration"`
	Polyline         GooglePolyline  `json:"polyline"`
}

type GoogleTextValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

type GooglePolyline struct {
	Points string `json:"points"`
}

// MapboxGeocodeResponse - ответ Mapbox Geocoding API v5
type MapboxGeocodeResponse struct {
	Features []MapboxFeature `json:"features"`
}

type MapboxFeature struct {
	ID        string   `json:"id"`
	PlaceName string   `json:"place_name"`
	PlaceType []string `json:"place_type"`
	Relevance float64  `json:"relevance,omitempty"`
	// Mapbox отдает координаты в порядке [lng, lat]
	Center []float64 `json:"center"`
}

// NominatimPlace - один результат поиска Nominatim.
// Координаты приходят строками.
type NominatimPlace struct {
	PlaceID     int64             `json:"place_id"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Type        string            `json:"type"`
	Class       string            `json:"class,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

// OSRMResponse - OSRM-совместимый ответ маршрутизации.
// Mapbox Directions API использует тот же формат.
type OSRMResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []OSRMRoute `json:"routes"`
}

type OSRMRoute struct {
	Distance float64   `json:"distance"` // метры
	Duration float64   `json:"duration"` // секунды
	Geometry string    `json:"geometry"` // закодированный polyline
	Legs     []OSRMLeg `json:"legs"`
}

type OSRMLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []OSRMStep `json:"steps"`
}

type OSRMStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Geometry string       `json:"geometry"`
	Name     string       `json:"name,omitempty"`
	Maneuver OSRMManeuver `json:"maneuver"`
}

type OSRMManeuver struct {
	Instruction string `json:"instruction"`
	Type        string `json:"type,omitempty"`
	Modifier    string `json:"modifier,omitempty"`
}
