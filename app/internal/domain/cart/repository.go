package cart

import "context"

// Repository persists cart snapshots keyed by cart session id.
type Repository interface {
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Save(ctx context.Context, sessionID string, items []LineItem) error
	Delete(ctx context.Context, sessionID string) error
}
