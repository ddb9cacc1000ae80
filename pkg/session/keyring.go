package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// KeyringStorage stores slots in the OS credential store
// (macOS Keychain, Windows Credential Manager, Secret Service, pass).
type KeyringStorage struct {
	mu     sync.Mutex
	ring   keyring.Keyring
	closed bool
}

// NewKeyringStorage wraps an already opened keyring.
func NewKeyringStorage(ring keyring.Keyring) *KeyringStorage {
	return &KeyringStorage{ring: ring}
}

// OpenKeyring opens the platform keyring under the given service name.
// An empty backends list lets keyring pick whatever the platform offers.
func OpenKeyring(service string, backends ...keyring.BackendType) (*KeyringStorage, error) {
	cfg := keyring.Config{
		ServiceName:              service,
		AllowedBackends:          backends,
		KeychainTrustApplication: true,
		PassPrefix:               service,
		WinCredPrefix:            service,
		LibSecretCollectionName:  service,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("session: open keyring %q: %w", service, err)
	}
	return NewKeyringStorage(ring), nil
}

// Get returns the value stored under key.
func (k *KeyringStorage) Get(ctx context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return "", false, ErrStorageClosed
	}
	item, err := k.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session: keyring get %q: %w", key, err)
	}
	return string(item.Data), true, nil
}

// Set stores value under key.
func (k *KeyringStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return ErrStorageClosed
	}
	if err := k.ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("session: keyring set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (k *KeyringStorage) Delete(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return ErrStorageClosed
	}
	if err := k.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("session: keyring remove %q: %w", key, err)
	}
	return nil
}

// Close marks the storage closed.
func (k *KeyringStorage) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	return nil
}
