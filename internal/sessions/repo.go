package sessions

import "context"

// Repo persists sessions. Save replaces the whole session and returns
// ErrNotFound for unknown IDs.
type Repo interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}
