package client

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
)

type ctxKey int

const (
	_ ctxKey = iota
	asynqCtxKey
)

var (
	globalClient *asynq.Client
	globalMu     sync.RWMutex
)

// GetClient prefers a client carried by ctx over the global one.
func GetClient(ctx context.Context) *asynq.Client {
	if c := ctx.Value(asynqCtxKey); c != nil {
		client, ok := c.(*asynq.Client)
		if !ok {
			return nil
		}
		return client
	}

	globalMu.RLock()
	client := globalClient
	globalMu.RUnlock()

	return client
}

// WithClient scopes client to ctx, e.g. for a test or a dedicated queue.
func WithClient(ctx context.Context, client *asynq.Client) context.Context {
	return context.WithValue(ctx, asynqCtxKey, client)
}

// SetClient replaces the global client and returns a function restoring the previous one.
func SetClient(client *asynq.Client) func() {
	globalMu.Lock()
	prev := globalClient
	globalClient = client
	globalMu.Unlock()
	return func() { SetClient(prev) }
}
