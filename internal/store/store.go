package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrAlreadyExists = errors.New("key already exists")
)

type KV struct {
	Key   string
	Value string
}

// Store is a durable remote key/value store. It offers no locking: callers
// must serialize mutations against the same keys themselves.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, overwrite bool) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]KV, error)
}

func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return s.Put(ctx, key, string(data), true)
}
