package appctx

import "context"

type identityKey struct{}

// Identity is the caller identity resolved by the upstream auth service
// and trusted as-is by the coordinator.
type Identity struct {
	ParticipantID string
	DisplayName   string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
