// Package storage keeps the admin client's local state: the admin key
// the operator has verified, prompts for project fields and the HTTP
// client used to reach the server.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/devshowcase/internal/models"
)

// KeyName is the entry the admin key is stored under.
const KeyName = "dev_showcase_admin_key"

// ErrMissingSecret is matched by every MissingSecretError.
var ErrMissingSecret = errors.New("admin key not set")

// MissingSecretError is returned when a privileged request is built while
// no admin key is held. Nothing is sent in that case.
type MissingSecretError struct{}

func (MissingSecretError) Error() string {
	return "admin key not set; run verify first"
}

func (MissingSecretError) Is(target error) bool { return target == ErrMissingSecret }

// SecretHolder persists at most one admin key in a JSON file readable only
// by the current user.
type SecretHolder struct {
	path string
	mu   sync.Mutex
}

// DefaultPath is <user config dir>/devshowcase/admin.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "devshowcase", "admin.json"), nil
}

// New returns a holder backed by the file at path. The file is created on
// the first Save.
func New(path string) *SecretHolder {
	return &SecretHolder{path: path}
}

// Save stores key, replacing any previous one.
func (h *SecretHolder) Save(key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err != nil {
		return err
	}
	entries[KeyName] = key

	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(h.path, b, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Get returns the stored key and whether one is held. An empty saved key
// counts as held. An unreadable key file reads as no key; Lookup reports
// why.
func (h *SecretHolder) Get() (string, bool) {
	key, ok, _ := h.Lookup()
	return key, ok
}

// Lookup is Get with the error from reading the key file.
func (h *SecretHolder) Lookup() (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err != nil {
		return "", false, err
	}
	key, ok := entries[KeyName]
	return key, ok, nil
}

// Has reports whether a key is held.
func (h *SecretHolder) Has() bool {
	_, ok := h.Get()
	return ok
}

// Clear forgets the stored key. Clearing an empty holder is not an error,
// and an unreadable key file is removed rather than reported.
func (h *SecretHolder) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err == nil {
		delete(entries, KeyName)
	}
	if err != nil || len(entries) == 0 {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, b, 0o600)
}

func (h *SecretHolder) load() (map[string]string, error) {
	entries := make(map[string]string)
	b, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	return entries, nil
}

// Attach wraps payload in a claim carrying the held key.
func Attach[T any](h *SecretHolder, payload T) (models.Claim[T], error) {
	key, ok := h.Get()
	if !ok {
		return models.Claim[T]{}, MissingSecretError{}
	}
	return models.Claim[T]{Payload: payload, ClaimedSecret: key}, nil
}
