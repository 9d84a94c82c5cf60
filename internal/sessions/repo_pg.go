package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. The session is stored as one JSONB
// document; finalized and the timestamps are mirrored into columns.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new session row.
func (r *PGRepo) Create(ctx context.Context, s Session) error {
	const query = `
INSERT INTO tailor_sessions (
    id,
    data,
    finalized,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5)`

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query, s.ID, payload, s.Finalized, s.CreatedAt, s.UpdatedAt)
	return err
}

// Get loads a session by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (Session, error) {
	const query = `
SELECT data
FROM tailor_sessions
WHERE id = $1`

	var payload []byte
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

// Save overwrites the stored document.
func (r *PGRepo) Save(ctx context.Context, s Session) error {
	const query = `
UPDATE tailor_sessions
SET data = $2,
    finalized = $3,
    updated_at = $4
WHERE id = $1`

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, s.ID, payload, s.Finalized, s.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a session row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tailor_sessions WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
