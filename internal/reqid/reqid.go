package reqid

import (
	"context"

	"github.com/google/uuid"
)

// key is the context key for the request correlation ID.
type key struct{}

// NewContext returns a copy of parent with a fresh correlation ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the correlation ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(key{})
	id, ok := v.(string)
	return id, ok
}
