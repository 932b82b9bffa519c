package store

import "context"

// EnsureUser creates the user when absent and returns the stored row either way.
func (s *Store) EnsureUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
INSERT INTO users (id) VALUES ($1)
ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
RETURNING id, created_at`, id).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `SELECT id, created_at FROM users WHERE id = $1`, id).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}
