package store

import (
	"context"
	"encoding/json"
	"time"

	"furiousfive-server/pkg/game"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "room:"

// Redis is a Store keeping each room's state as a JSON value whose key TTL is
// the idle window; touching a room on read or write refreshes the TTL, so
// eviction needs no janitor.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a redis-backed store with the given idle TTL
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}

// CreateRoom stores the state under its room code
func (r *Redis) CreateRoom(ctx context.Context, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, redisKeyPrefix+state.RoomCode, payload, r.ttl).Err()
}

// GetRoom returns the state for the room code, or ErrRoomNotFound
func (r *Redis) GetRoom(ctx context.Context, roomCode string) (*game.State, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+roomCode).Bytes()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	} else if err != nil {
		return nil, err
	}

	// reading counts as activity
	r.client.Expire(ctx, redisKeyPrefix+roomCode, r.ttl)

	var state game.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// UpdateRoom replaces the state for an existing room
func (r *Redis) UpdateRoom(ctx context.Context, roomCode string, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	set, err := r.client.SetXX(ctx, redisKeyPrefix+roomCode, payload, r.ttl).Result()
	if err != nil {
		return err
	}

	if !set {
		return ErrRoomNotFound
	}

	return nil
}

// DeleteRoom removes the room
func (r *Redis) DeleteRoom(ctx context.Context, roomCode string) error {
	return r.client.Del(ctx, redisKeyPrefix+roomCode).Err()
}

// ListActiveRooms returns the codes of all live rooms
func (r *Redis) ListActiveRooms(ctx context.Context) ([]string, error) {
	var roomCodes []string

	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		roomCodes = append(roomCodes, iter.Val()[len(redisKeyPrefix):])
	}

	return roomCodes, iter.Err()
}
