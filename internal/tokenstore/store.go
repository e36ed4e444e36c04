// Package tokenstore persists the bearer credential and the cached user
// profile across process restarts. It is a plain key-value contract with two
// fixed keys; the session manager is the only writer.
package tokenstore

import "context"

// Fixed keys of the persisted credential record.
const (
	KeyAuthToken = "authToken"
	KeyAuthUser  = "authUser"
)

// Store is durable key-value persistence for the credential record.
//
// Get returns (value, true, nil) when the key exists and ("", false, nil)
// when it does not. Callers treat a Get error the same as an absent key
// (the session degrades to anonymous); Set/Remove errors are reported so
// callers can log them, but must not abort the in-memory state change.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
