package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/tareas/internal/store"
)

const serviceName = "tareas"

// Keyring stores session values in the operating system keyring.
// It satisfies store.KV.
type Keyring struct {
	ring keyring.Keyring
}

var _ store.KV = (*Keyring)(nil)

// Open returns a Keyring backed by the first available system backend.
func Open() (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/tareas/keyring",
		FilePasswordFunc:         keyring.FixedStringPrompt("tareas-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

// New wraps an already opened keyring (tests use keyring.NewArrayKeyring).
func New(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// Get retrieves a value by key. Missing keys yield store.ErrNotFound.
func (k *Keyring) Get(_ context.Context, key string) (string, error) {
	item, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting %q from keyring: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a value by key.
func (k *Keyring) Set(_ context.Context, key, value string) error {
	err := k.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting %q in keyring: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (k *Keyring) Remove(_ context.Context, key string) error {
	err := k.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting %q from keyring: %w", key, err)
	}
	return nil
}
