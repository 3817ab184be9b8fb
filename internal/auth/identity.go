package auth

import "context"

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Email  string
}

// Authorize reports whether id may act on resources owned by owner.
func Authorize(id Identity, owner string) bool {
	return id.UserID != "" && id.UserID == owner
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
