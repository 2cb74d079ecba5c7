package persistence

import (
	"context"
	"errors"
)

// Keys used by the application in the durable store.
const (
	KeyToken   = "tm_token"
	KeyTickets = "tm_tickets"
)

// ErrNotConfigured is returned by drivers whose backing connection was never established.
var ErrNotConfigured = errors.New("store backend not configured")

// Store is a durable string key/value store. Absent keys are reported
// with found=false, never as an error. Stored values are returned verbatim;
// interpreting them is the caller's job.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// WithPrefix namespaces every key of s under prefix. An empty prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixedStore{inner: s, prefix: prefix}
}

type prefixedStore struct {
	inner  Store
	prefix string
}

func (p *prefixedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixedStore) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

func (p *prefixedStore) Ping(ctx context.Context) error { return p.inner.Ping(ctx) }

func (p *prefixedStore) Close() error { return p.inner.Close() }
