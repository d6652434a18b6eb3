package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var paramsBucket = []byte("params")

// Bolt keeps parameters in a local bbolt file.
type Bolt struct {
	db *bolt.DB
}

func (b *Bolt) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(paramsBucket).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}

		value = string(raw)

		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

func (b *Bolt) Put(ctx context.Context, key, value string, overwrite bool) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paramsBucket)

		if !overwrite && bucket.Get([]byte(key)) != nil {
			return ErrAlreadyExists
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to put %s: %w", key, err)
		}

		return nil
	})
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paramsBucket)

		if bucket.Get([]byte(key)) == nil {
			return ErrNotFound
		}

		return bucket.Delete([]byte(key))
	})
}

func (b *Bolt) List(ctx context.Context, prefix string) ([]KV, error) {
	kvs := make([]KV, 0)

	err := b.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(paramsBucket).Cursor()
		p := []byte(prefix)

		for k, v := cursor.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = cursor.Next() {
			kvs = append(kvs, KV{Key: string(k), Value: string(v)})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return kvs, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(paramsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create params bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}
