// Package docs Maps Gateway API.
//
// Шлюз к провайдерам карт (Google Maps, Mapbox, OpenStreetMap)
// с единым нормализованным форматом ответов.
//
// Основные возможности:
// - Прямое и обратное геокодирование через любого провайдера
// - Построение маршрутов с расстоянием, длительностью и шагами
// - Кеширование результатов, квоты и лимиты частоты на клиента
// - Статистика использования по дням, эндпоинтам и провайдерам
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	Security:
//	- api_key:
//
//	SecurityDefinitions:
//	api_key:
//	     type: apiKey
//	     name: X-API-Key
//	     in: header
//
// swagger:meta
package docs
