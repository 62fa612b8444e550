// Package store persists the flattened cell mapping under a single key.
//
// Backends implement KV over raw bytes:
//   - memory: in-process map for tests and ephemeral runs
//   - file: one JSON file per key under ~/.config/screenwall/store
//   - sqlite: a kv table in a local database file
//   - redis: string keys with a configurable prefix
//   - mongo: one document per key
//
// Adapter layers the cell-mapping JSON encoding on top of a KV.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// KV is a minimal byte-oriented key/value store.
type KV interface {
	Put(ctx context.Context, key string, value []byte) error
	// Get returns nil, nil when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Snapshot is the persisted cell mapping keyed by GridIDLong.
type Snapshot map[string]matrix.Cell

// Encode renders a snapshot as a JSON object.
func Encode(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Empty input decodes to an empty snapshot.
func Decode(data []byte) (Snapshot, error) {
	out := Snapshot{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if out == nil {
		out = Snapshot{}
	}
	return out, nil
}

// Adapter saves and loads the cell mapping under one key.
type Adapter struct {
	kv  KV
	key string
}

// NewAdapter binds a KV to a storage key.
func NewAdapter(kv KV, key string) *Adapter {
	return &Adapter{kv: kv, key: key}
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Save writes the mapping, replacing any previous snapshot.
func (a *Adapter) Save(ctx context.Context, cells map[string]matrix.Cell) error {
	data, err := Encode(cells)
	if err != nil {
		return err
	}
	if err := a.kv.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("failed to save %q: %w", a.key, err)
	}
	return nil
}

// Load returns the stored mapping, or an empty one when nothing was saved.
func (a *Adapter) Load(ctx context.Context) (Snapshot, error) {
	data, err := a.kv.Get(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", a.key, err)
	}
	return Decode(data)
}

// Clear removes the stored mapping. Clearing a missing key is not an error.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.kv.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("failed to clear %q: %w", a.key, err)
	}
	return nil
}

// Close closes the underlying KV.
func (a *Adapter) Close() error {
	return a.kv.Close()
}
