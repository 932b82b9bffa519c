package store

import "context"

func (s *Store) CreateRoomUser(ctx context.Context, roomID, userID string, isAdmin bool, status ApprovalStatus) (*RoomUser, error) {
	ru := RoomUser{RoomID: roomID, UserID: userID, IsAdmin: isAdmin, Status: status}
	err := s.db.QueryRow(ctx,
		`INSERT INTO room_users (room_id, user_id, is_admin, status) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		roomID, userID, isAdmin, string(status),
	).Scan(&ru.CreatedAt)
	switch {
	case err == nil:
		return &ru, nil
	case isUniqueViolation(err):
		return nil, ErrAlreadyExists
	case isForeignKeyViolation(err):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (s *Store) GetRoomUser(ctx context.Context, roomID, userID string) (*RoomUser, error) {
	var (
		ru     RoomUser
		status string
	)
	err := s.db.QueryRow(ctx,
		`SELECT room_id, user_id, is_admin, status, created_at FROM room_users WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	).Scan(&ru.RoomID, &ru.UserID, &ru.IsAdmin, &status, &ru.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	ru.Status = ApprovalStatus(status)
	return &ru, nil
}

// ListRoomUsers returns members in join order. approvedOnly hides pending and
// rejected requests.
func (s *Store) ListRoomUsers(ctx context.Context, roomID string, approvedOnly bool) ([]RoomUser, error) {
	rows, err := s.db.Query(ctx, `
SELECT room_id, user_id, is_admin, status, created_at
FROM room_users
WHERE room_id = $1 AND ($2::boolean = false OR status = 'approved')
ORDER BY created_at ASC, user_id ASC`, roomID, approvedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RoomUser{}
	for rows.Next() {
		var (
			ru     RoomUser
			status string
		)
		if err := rows.Scan(&ru.RoomID, &ru.UserID, &ru.IsAdmin, &status, &ru.CreatedAt); err != nil {
			return nil, err
		}
		ru.Status = ApprovalStatus(status)
		out = append(out, ru)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRoomUserStatus(ctx context.Context, roomID, userID string, status ApprovalStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE room_users SET status = $3 WHERE room_id = $1 AND user_id = $2`,
		roomID, userID, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
