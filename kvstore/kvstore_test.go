package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, ok, err := s.Get(ctx, "a")
	assert.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Set(ctx, "a", "1"))
	v, ok, err := s.Get(ctx, "a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	require.NoError(t, s.Del(ctx, "a"))
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	out := &record{}
	ok, err := LoadJSON(ctx, s, "rec", out)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SaveJSON(ctx, s, "rec", &record{Name: "x", Count: 2}))
	ok, err = LoadJSON(ctx, s, "rec", out)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, &record{Name: "x", Count: 2}, out)

	require.NoError(t, s.Set(ctx, "rec", "{broken"))
	_, err = LoadJSON(ctx, s, "rec", out)
	assert.ErrorIs(t, err, ErrDecodeValue)
}
