package directory

import "context"

// Store is the external room directory. The coordinator treats it as
// eventually consistent: admission decisions never consult it, and every
// call from the coordinator side is best-effort.
type Store interface {
	UpdateCount(ctx context.Context, roomID string, count int) error
	ReadPermanence(ctx context.Context, roomID string) (bool, error)
	Deactivate(ctx context.Context, roomID string) error
}
