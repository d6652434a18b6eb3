package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "/a/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "/a/one", "1", false))
	require.NoError(t, s.Put(ctx, "/a/two", "2", false))
	require.NoError(t, s.Put(ctx, "/b/three", "3", false))

	assert.ErrorIs(t, s.Put(ctx, "/a/one", "x", false), ErrAlreadyExists)
	require.NoError(t, s.Put(ctx, "/a/one", "11", true))

	value, err := s.Get(ctx, "/a/one")
	require.NoError(t, err)
	assert.Equal(t, "11", value)

	kvs, err := s.List(ctx, "/a/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []KV{{Key: "/a/one", Value: "11"}, {Key: "/a/two", Value: "2"}}, kvs)

	require.NoError(t, s.Delete(ctx, "/a/two"))
	assert.ErrorIs(t, s.Delete(ctx, "/a/two"), ErrNotFound)

	kvs, err = s.List(ctx, "/a/")
	require.NoError(t, err)
	assert.Len(t, kvs, 1)
}

func Test_Memory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func Test_Bolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.db")

	b, err := NewBolt(path)
	require.NoError(t, err)

	exerciseStore(t, b)
	require.NoError(t, b.Close())

	reopened, err := NewBolt(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(context.Background(), "/a/one")
	require.NoError(t, err)
	assert.Equal(t, "11", value)
}

func Test_JSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, PutJSON(ctx, s, "/p", payload{Name: "x", Count: 3}))

	var actual payload
	require.NoError(t, GetJSON(ctx, s, "/p", &actual))
	assert.Equal(t, payload{Name: "x", Count: 3}, actual)

	assert.ErrorIs(t, GetJSON(ctx, s, "/missing", &actual), ErrNotFound)
}
