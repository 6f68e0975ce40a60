// Package storage defines the key/value capability the todo store persists through.
//
// An Adapter plays the role a browser's localStorage plays for a web client: a
// flat string-to-string map that may or may not be available. The store treats
// every adapter call as fallible and never lets an adapter error escape.
package storage

import "errors"

// ErrClosed is returned by adapters used after Close.
var ErrClosed = errors.New("storage: adapter closed")

// Adapter is a minimal key/value store.
type Adapter interface {
	// Get returns the value stored at key. ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)

	// Set stores value at key, fully replacing any previous value.
	Set(key, value string) error
}
