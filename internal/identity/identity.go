// Package identity carries the acting user through a request context, so that
// services never read it from payload fields directly.
package identity

import (
	"context"
	"strings"
)

type userKey struct{}

// WithUser returns ctx carrying user. Blank users are ignored.
func WithUser(ctx context.Context, user string) context.Context {
	user = strings.TrimSpace(user)
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext extracts the acting user.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey{}).(string)
	return user, ok && user != ""
}
