package session

import (
	"context"
	"errors"
)

// Storage is a persistent string key-value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key.
	// Returns ("", false, nil) if the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the storage.
	Close() error
}

// Keys of the persisted session slots.
const (
	KeyToken    = "token"
	KeyUserID   = "userId"
	KeyUsername = "username"
	KeyRole     = "role"
)

// Keys lists every persisted session slot.
var Keys = []string{KeyToken, KeyUserID, KeyUsername, KeyRole}

// ErrStorageClosed is returned when operations are attempted on a closed storage.
var ErrStorageClosed = errors.New("session storage is closed")

// ErrEmptyKey is returned when a key is empty.
var ErrEmptyKey = errors.New("session storage key must not be empty")
