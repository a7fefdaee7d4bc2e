//go:build ignore

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

	"github.com/geo-routing-microservice/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	entityType := flag.String("type", domain.EntityTypeAgent, "entity type: agent or client")
	entityID := flag.String("id", "courier-1", "entity id")
	lat := flag.Float64("lat", 40.7128, "latitude")
	lng := flag.Float64("lng", -74.0060, "longitude")
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

	event := domain.PositionUpdateEvent{
		EventID:    uuid.New(),
		EntityType: *entityType,
		EntityID:   *entityID,
		Lat:        *lat,
		Lng:        *lng,
		RecordedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Стартовая позиция стрима уведомлений, чтобы не читать старые
	startID := "$"
	if last, err := client.XRevRangeN(ctx, domain.StreamNotificationSend, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		startID = last[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamPositionUpdate,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamPositionUpdate)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Recipient: %s\n", event.Recipient())
	fmt.Printf("   Coordinates: %.6f, %.6f\n", event.Lat, event.Lng)

	fmt.Printf("\nWaiting for notifications in %s...\n", domain.StreamNotificationSend)

	deadline := time.Now().Add(15 * time.Second)
	received := 0
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamNotificationSend, startID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil {
			continue
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				startID = msg.ID
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var notification domain.NotificationEvent
				if err := json.Unmarshal([]byte(dataStr), &notification); err != nil {
					continue
				}
				if notification.RecipientID != event.Recipient() {
					continue
				}

				received++
				pretty, _ := json.MarshalIndent(notification, "", "  ")
				fmt.Printf("\nNotification received:\n%s\n", pretty)
			}
		}
	}

	if received == 0 {
		fmt.Println("No notifications: position is outside every active geofence or was deduplicated")
	}
}
