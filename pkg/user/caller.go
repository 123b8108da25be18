package user

import (
	"context"
	"log/slog"
	"net/http"
)

// Caller identifies the authenticated principal a request runs as.
// The zero value is the anonymous caller.
type Caller struct {
	ID        int64           `json:"id,omitempty"`
	Username  string          `json:"username,omitempty"`
	Roles     []string        `json:"roles,omitempty"`
	ExtraCaps map[string]bool `json:"extra_capabilities,omitempty"`
}

// IsAuthenticated reports whether the caller carries an identity.
func (c Caller) IsAuthenticated() bool {
	return c.ID != 0
}

func (c Caller) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", c.ID),
		slog.Any("roles", c.Roles),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation. This technique
// for defining context keys was copied from Go 1.7's new use of context in net/http.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "user context value " + k.name
}

var CallerKey = &contextKey{"Caller"}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromContext returns the caller stored in the context, or the
// anonymous caller when none is present.
func CallerFromContext(ctx context.Context) Caller {
	if caller, ok := ctx.Value(CallerKey).(Caller); ok {
		return caller
	}
	return Caller{}
}

// CallerFromRequest is a convenience wrapper over CallerFromContext.
func CallerFromRequest(r *http.Request) Caller {
	return CallerFromContext(r.Context())
}
