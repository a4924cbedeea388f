package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"furiousfive-server/pkg/game"

	"github.com/sirupsen/logrus"
)

// Postgres is a Store backed by a rooms table holding the serialized state.
// Idle eviction sweeps rows by their updated_at timestamp.
type Postgres struct {
	db   *sql.DB
	ttl  time.Duration
	done chan struct{}
}

// NewPostgres returns a postgres-backed store sweeping idle rooms older than
// ttl every sweepInterval
func NewPostgres(db *sql.DB, ttl, sweepInterval time.Duration) *Postgres {
	p := &Postgres{
		db:   db,
		ttl:  ttl,
		done: make(chan struct{}),
	}

	go p.janitor(sweepInterval)
	return p
}

func (p *Postgres) janitor(sweepInterval time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := p.db.Exec("DELETE FROM rooms WHERE updated_at < $1", time.Now().Add(-p.ttl))
			if err != nil {
				logrus.WithError(err).Error("could not evict idle rooms")
				continue
			}

			if n, err := res.RowsAffected(); err == nil && n > 0 {
				logrus.WithField("rooms", n).Info("evicted idle rooms")
			}
		case <-p.done:
			return
		}
	}
}

// Close stops the eviction janitor
func (p *Postgres) Close() {
	close(p.done)
}

// CreateRoom stores the state under its room code
func (p *Postgres) CreateRoom(ctx context.Context, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	const query = `INSERT INTO rooms (room_code, state, updated_at) VALUES ($1, $2, NOW())`
	_, err = p.db.ExecContext(ctx, query, state.RoomCode, payload)
	return err
}

// GetRoom returns the state for the room code, or ErrRoomNotFound
func (p *Postgres) GetRoom(ctx context.Context, roomCode string) (*game.State, error) {
	const query = `UPDATE rooms SET updated_at = NOW() WHERE room_code = $1 RETURNING state`

	var payload []byte
	if err := p.db.QueryRowContext(ctx, query, roomCode).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	var state game.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// UpdateRoom replaces the state for an existing room
func (p *Postgres) UpdateRoom(ctx context.Context, roomCode string, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	const query = `UPDATE rooms SET state = $2, updated_at = NOW() WHERE room_code = $1`
	res, err := p.db.ExecContext(ctx, query, roomCode, payload)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// DeleteRoom removes the room
func (p *Postgres) DeleteRoom(ctx context.Context, roomCode string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM rooms WHERE room_code = $1", roomCode)
	return err
}

// ListActiveRooms returns the codes of all live rooms
func (p *Postgres) ListActiveRooms(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT room_code FROM rooms ORDER BY room_code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roomCodes []string
	for rows.Next() {
		var roomCode string
		if err := rows.Scan(&roomCode); err != nil {
			return nil, err
		}

		roomCodes = append(roomCodes, roomCode)
	}

	return roomCodes, rows.Err()
}
