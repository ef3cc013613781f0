// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type UsageEvent struct {
	ClientID       uuid.UUID `json:"client_id"`
	Endpoint       string    `json:"endpoint"`
	Provider       string    `json:"provider"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Success        bool      `json:"success"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	clientID := flag.String("client", "", "Client UUID (random if empty)")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	id := uuid.New()
	if *clientID != "" {
		parsed, err := uuid.Parse(*clientID)
		if err != nil {
			log.Fatalf("Invalid client UUID: %v", err)
		}
		id = parsed
	}

	// Тестовое событие
	event := UsageEvent{
		ClientID:       id,
		Endpoint:       "geocode",
		Provider:       "osm",
		ResponseTimeMs: 245,
		Success:        true,
		OccurredAt:     time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:usage:events",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: stream:usage:events\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Client ID: %s\n", event.ClientID)
	fmt.Printf("   Endpoint: %s via %s (%dms)\n", event.Endpoint, event.Provider, event.ResponseTimeMs)
}
