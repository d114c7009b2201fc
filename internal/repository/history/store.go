package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atrium-labs/contractsearch/internal/db"
)

// DefaultKey is the namespaced key holding the history JSON array.
const DefaultKey = "contractsearch:history"

// store is the consumer interface for history persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store persists past query strings as a JSON string array under one key.
// It is the durable collaborator the live controller reads from and
// appends to; callers are expected to treat failures as "no history".
type Store struct {
	kv  store
	key string
}

// New creates a history store. key defaults to DefaultKey when empty.
func New(kv store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Load reads the persisted history, most recent first.
// A missing key is an empty history, not an error.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt payload degrades to empty history rather than
		// blocking search.
		return nil, nil
	}
	return entries, nil
}

// Save overwrites the persisted history.
func (s *Store) Save(ctx context.Context, entries []string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
