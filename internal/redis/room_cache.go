package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"askroom/internal/domain/room"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key pattern: room:{code}:meta - room metadata, 5m TTL.
// Rooms never mutate after creation, so the TTL only bounds memory for
// rooms nobody looks at anymore.

const defaultRoomTTL = 5 * time.Minute

// RoomCache keeps room metadata in Redis so the hot resolve path skips
// Postgres.
type RoomCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRoomCache(client *goredis.Client) *RoomCache {
	return &RoomCache{client: client, ttl: defaultRoomTTL}
}

func roomKey(code string) string {
	return fmt.Sprintf("room:%s:meta", code)
}

// Get returns the cached room, or nil on a miss.
func (c *RoomCache) Get(ctx context.Context, code string) (*room.Room, error) {
	data, err := c.client.Get(ctx, roomKey(code)).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var rm room.Room
	if err := json.Unmarshal([]byte(data), &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Set stores the room with the configured TTL.
func (c *RoomCache) Set(ctx context.Context, rm room.Room) error {
	data, err := json.Marshal(rm)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomKey(rm.Code), data, c.ttl).Err()
}

// Invalidate drops the cached entry.
func (c *RoomCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, roomKey(code)).Err()
}
