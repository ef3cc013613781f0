package dto

// GeocodeRequest - запрос на прямое геокодирование
type GeocodeRequest struct {
	Address  string `json:"address" query:"address" validate:"required,min=3"`
	Provider string `json:"provider,omitempty" query:"provider" validate:"omitempty,oneof=google mapbox osm"`
}

// ReverseGeocodeRequest - запрос на обратное геокодирование
type ReverseGeocodeRequest struct {
	Lat      float64 `json:"lat" query:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" query:"lng" validate:"min=-180,max=180"`
	Provider string  `json:"provider,omitempty" query:"provider" validate:"omitempty,oneof=google mapbox osm"`
}

// DirectionsRequest - запрос на построение маршрута
type DirectionsRequest struct {
	Origin      string `json:"origin" query:"origin" validate:"required,min=3"`
	Destination string `json:"destination" query:"destination" validate:"required,min=3"`
	Mode        string `json:"mode,omitempty" query:"mode" validate:"omitempty,oneof=driving walking bicycling cycling transit"`
	Provider    string `json:"provider,omitempty" query:"provider" validate:"omitempty,oneof=google mapbox osm"`
}

// ModesRequest - запрос на список режимов передвижения провайдера
type ModesRequest struct {
	Provider string `json:"provider,omitempty" query:"provider" validate:"omitempty,oneof=google mapbox osm"`
}

// RegisterClientRequest - запрос на регистрацию клиента шлюза
type RegisterClientRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=100"`
	Email            string   `json:"email" validate:"required,email"`
	Plan             string   `json:"plan,omitempty" validate:"omitempty,oneof=free basic premium enterprise"`
	AllowedProviders []string `json:"allowed_providers,omitempty" validate:"omitempty,dive,oneof=google mapbox osm"`
}

// UpdateClientRequest - запрос на изменение клиента
type UpdateClientRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Plan             *string  `json:"plan,omitempty" validate:"omitempty,oneof=free basic premium enterprise"`
	AllowedProviders []string `json:"allowed_providers,omitempty" validate:"omitempty,dive,oneof=google mapbox osm"`
}

// UsageQueryRequest - запрос статистики использования за период
type UsageQueryRequest struct {
	From string `json:"from,omitempty" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to,omitempty" query:"to" validate:"omitempty,datetime=2006-01-02"`
}
