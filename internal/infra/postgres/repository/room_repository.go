package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lingopeer/lingopeer/internal/domain/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository is the Postgres-backed room directory. It satisfies
// directory.Store for the coordinator's best-effort sync and serves the
// rooms API.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoomByID(ctx context.Context, roomID string) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]*models.Room, error)

	UpdateCount(ctx context.Context, roomID string, count int) error
	ReadPermanence(ctx context.Context, roomID string) (bool, error)
	Deactivate(ctx context.Context, roomID string) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (room_id, name, capacity, permanent, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, room.RoomID, room.Name, room.Capacity, room.Permanent).
		Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	room.Active = true

	return nil
}

func (r *roomRepo) GetRoomByID(ctx context.Context, roomID string) (*models.Room, error) {
	room := &models.Room{}
	query := `
		SELECT room_id, name, capacity, permanent, active, participant_count, created_at, updated_at
		FROM rooms
		WHERE room_id = $1
	`

	if err := r.db.GetContext(ctx, room, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	return room, nil
}

func (r *roomRepo) ListActiveRooms(ctx context.Context) ([]*models.Room, error) {
	query := `
		SELECT room_id, name, capacity, permanent, active, participant_count, created_at, updated_at
		FROM rooms
		WHERE active
		ORDER BY created_at DESC
	`

	var rooms []*models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

func (r *roomRepo) UpdateCount(ctx context.Context, roomID string, count int) error {
	query := `
		UPDATE rooms
		SET participant_count = $2, updated_at = now()
		WHERE room_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, roomID, count); err != nil {
		return fmt.Errorf("update participant count: %w", err)
	}

	return nil
}

func (r *roomRepo) ReadPermanence(ctx context.Context, roomID string) (bool, error) {
	var permanent bool
	query := `SELECT permanent FROM rooms WHERE room_id = $1`

	if err := r.db.GetContext(ctx, &permanent, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrRoomNotFound
		}
		return false, fmt.Errorf("read permanence: %w", err)
	}

	return permanent, nil
}

func (r *roomRepo) Deactivate(ctx context.Context, roomID string) error {
	query := `
		UPDATE rooms
		SET active = false, participant_count = 0, updated_at = now()
		WHERE room_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, roomID); err != nil {
		return fmt.Errorf("deactivate room: %w", err)
	}

	return nil
}
