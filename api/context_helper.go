package api

import (
	"context"
	"time"
)

// QueryTimeout caps how long a single store round trip may run. Handlers
// derive their query contexts from it so a slow mongo node cannot pin a
// request goroutine for the life of the connection.
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context bounded by QueryTimeout. A nil parent
// falls back to context.Background so callers outside a request, like the
// cron jobs, can use it too.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
