package preset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/kvstore"
)

func seqGen() IDGenFunc {
	var id uint64 = 100
	return func() uint64 {
		id++
		return id
	}
}

func strPtr(s string) *string {
	return &s
}

func TestAddAndFind(t *testing.T) {
	ctx := context.Background()
	svc := NewWithIDGen(kvstore.NewMemoryStore(), seqGen())
	p, err := svc.Add(ctx, " cli ", " cli ", " cli ")
	require.NoError(t, err)
	assert.Equal(t, &entity.Preset{ID: "101", Name: "cli", Owner: "cli", Repo: "cli"}, p)

	p2, err := svc.Add(ctx, "", "golang", "go")
	require.NoError(t, err)
	assert.Equal(t, "golang/go", p2.Name)

	_, err = svc.Add(ctx, "x", "", "go")
	assert.ErrorIs(t, err, ErrInvalidPreset)

	got, ok, err := svc.Find(ctx, "102")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p2, got)
	_, ok, err = svc.Find(ctx, "999")
	require.NoError(t, err)
	assert.False(t, ok)

	cnt, err := svc.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, cnt)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewWithIDGen(kvstore.NewMemoryStore(), seqGen())
	p, err := svc.Add(ctx, "a", "o", "r")
	require.NoError(t, err)

	up, err := svc.Update(ctx, p.ID, &PresetUpdate{Repo: strPtr(" r2 ")})
	require.NoError(t, err)
	assert.Equal(t, "a", up.Name)
	assert.Equal(t, "r2", up.Repo)

	_, err = svc.Update(ctx, p.ID, &PresetUpdate{Owner: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidPreset)
	_, err = svc.Update(ctx, "404", &PresetUpdate{})
	assert.ErrorIs(t, err, ErrPresetNotFound)

	got, ok, err := svc.Find(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "o", got.Owner)
	assert.Equal(t, "r2", got.Repo)

	assert.ErrorIs(t, svc.Delete(ctx, "404"), ErrPresetNotFound)
	require.NoError(t, svc.Delete(ctx, p.ID))
	cnt, err := svc.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, cnt)
}

func TestLoadBrokenRecord(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	svc := NewWithIDGen(kv, seqGen())
	for _, raw := range []string{`{"id":"1"}`, `broken`, `null`} {
		require.NoError(t, kv.Set(ctx, defaultPresetsKey, raw))
		ps, err := svc.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, ps, 0)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	svc := NewWithIDGen(kvstore.NewMemoryStore(), seqGen())
	_, err := svc.Add(ctx, "a", "o", "r")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))
	ps, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ps)
	assert.Len(t, ps, 0)
}
