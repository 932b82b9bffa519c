package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// CreateRoom inserts the room and enrolls its creator as an approved admin in
// one transaction.
func (s *Store) CreateRoom(ctx context.Context, name, createdBy string) (*Room, error) {
	room := Room{ID: NewID(), Name: name, CreatedBy: createdBy}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO rooms (id, name, created_by) VALUES ($1, $2, $3) RETURNING created_at`,
			room.ID, room.Name, room.CreatedBy,
		).Scan(&room.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO room_users (room_id, user_id, is_admin, status) VALUES ($1, $2, true, $3)`,
			room.ID, room.CreatedBy, string(StatusApproved),
		)
		return err
	})
	switch {
	case err == nil:
		return &room, nil
	case isUniqueViolation(err):
		return nil, ErrRoomNameNotUnique
	case isForeignKeyViolation(err):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (s *Store) GetRoom(ctx context.Context, id string) (*Room, error) {
	var r Room
	err := s.db.QueryRow(ctx,
		`SELECT id, name, created_by, created_at FROM rooms WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.CreatedBy, &r.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_by, created_at FROM rooms ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Room{}
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
