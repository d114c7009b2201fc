package saved

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atrium-labs/contractsearch/internal/domain"
)

// KeyPrefix namespaces saved-search keys.
const KeyPrefix = "contractsearch:saved:"

// Search is a named query a user chose to keep.
type Search struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// store is the consumer interface for saved-search persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
}

// Store persists named queries, one KV entry each.
type Store struct {
	kv store
}

// New creates a saved-search store.
func New(kv store) *Store {
	return &Store{kv: kv}
}

// Save persists a named query and returns it with a generated ID.
func (s *Store) Save(ctx context.Context, name, query string) (Search, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Search{}, domain.ErrEmptyName
	}

	entry := Search{
		ID:        uuid.NewString(),
		Name:      name,
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return Search{}, fmt.Errorf("marshal saved search: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPrefix+entry.ID, data); err != nil {
		return Search{}, fmt.Errorf("save search %q: %w", name, err)
	}
	return entry, nil
}

// List returns all saved searches, newest first.
func (s *Store) List(ctx context.Context) ([]Search, error) {
	keys, err := s.kv.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan saved searches: %w", err)
	}

	out := make([]Search, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // entry vanished between scan and get
		}
		var entry Search
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a saved search by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("delete saved search %s: %w", id, err)
	}
	return nil
}
