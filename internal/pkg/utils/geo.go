package utils

// ValidateCoordinates проверяет, что координаты в допустимых пределах
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
