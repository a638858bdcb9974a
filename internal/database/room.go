package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/partygames/internal/models"
)

// RoomRepo stores rooms and rosters in PostgreSQL. It implements rooms.Store.
type RoomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepo(pool *pgxpool.Pool) *RoomRepo {
	return &RoomRepo{pool: pool}
}

// CreateRoom inserts a new room row.
func (r *RoomRepo) CreateRoom(ctx context.Context, room *models.Room) error {
	q := `
		INSERT INTO rooms (id, creator, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, q, room.ID, room.Creator, room.Status, room.CreatedAt); err != nil {
		return fmt.Errorf("insert room %s: %w", room.ID, err)
	}
	return nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	q := `SELECT id, creator, status, created_at FROM rooms WHERE id = $1`
	err := r.pool.QueryRow(ctx, q, id).Scan(&room.ID, &room.Creator, &room.Status, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select room %s: %w", id, err)
	}
	return &room, nil
}

// DeleteRoom removes a room; its players go with it.
func (r *RoomRepo) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRoomNotFound
	}
	return nil
}

// ListRooms returns every room, oldest first.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, creator, status, created_at FROM rooms ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Creator, &room.Status, &room.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// SetStatus updates a room's status.
func (r *RoomRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE rooms SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update room %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRoomNotFound
	}
	return nil
}

// UpsertPlayer adds the player or renames them in place. The room must exist.
func (r *RoomRepo) UpsertPlayer(ctx context.Context, p *models.Player) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)`, p.RoomID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.ErrRoomNotFound
		}
		q := `
			INSERT INTO players (room_id, client_id, username, joined_at, last_seen)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (room_id, client_id)
			DO UPDATE SET username = EXCLUDED.username, last_seen = EXCLUDED.last_seen
		`
		_, err := tx.Exec(ctx, q, p.RoomID, p.ClientID, p.Username, p.JoinedAt, p.LastSeen)
		return err
	})
}

// ListPlayers returns the room's roster in join order.
func (r *RoomRepo) ListPlayers(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	if _, err := r.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	q := `
		SELECT client_id, username, room_id, joined_at, last_seen
		FROM players
		WHERE room_id = $1
		ORDER BY joined_at, seq
	`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("list players of %s: %w", roomID, err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ClientID, &p.Username, &p.RoomID, &p.JoinedAt, &p.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
