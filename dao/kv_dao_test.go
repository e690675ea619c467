package dao

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/ghrelease/db"
	"github.com/xxxsen/ghrelease/kvstore"
)

var (
	dbfile = "/tmp/sqlite_ghrelease_dao_test.db"
	kvDao  kvstore.IKVStore
)

func setup() {
	tearDown()
	if err := db.InitDB(dbfile); err != nil {
		panic(err)
	}
	kvDao = NewKVDao(db.GetClient())
}

func tearDown() {
	_ = os.Remove(dbfile)
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	tearDown()
	if code != 0 {
		os.Exit(code)
	}
}

func TestKVSetGet(t *testing.T) {
	ctx := context.Background()
	_, ok, err := kvDao.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kvDao.Set(ctx, "settings", `{"theme":"blue"}`))
	v, ok, err := kvDao.Get(ctx, "settings")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"theme":"blue"}`, v)

	assert.NoError(t, kvDao.Set(ctx, "settings", `{"theme":"pink"}`))
	v, ok, err = kvDao.Get(ctx, "settings")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"theme":"pink"}`, v)
}

func TestKVDel(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		assert.NoError(t, kvDao.Set(ctx, fmt.Sprintf("del-%d", i), "x"))
	}
	for i := 0; i < 10; i += 2 {
		assert.NoError(t, kvDao.Del(ctx, fmt.Sprintf("del-%d", i)))
	}
	for i := 0; i < 10; i++ {
		_, ok, err := kvDao.Get(ctx, fmt.Sprintf("del-%d", i))
		assert.NoError(t, err)
		assert.Equal(t, i%2 == 1, ok)
	}
	assert.NoError(t, kvDao.Del(ctx, "never-existed"))
}
