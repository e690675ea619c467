package dao

import (
	"context"
	"time"

	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/kvstore"

	"github.com/didi/gendry/builder"
	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/dbkit"
)

type kvDaoImpl struct {
	dbc database.IDatabase
}

// NewKVDao persists key-value pairs into kv_tab.
func NewKVDao(dbc database.IDatabase) kvstore.IKVStore {
	return &kvDaoImpl{
		dbc: dbc,
	}
}

func (k *kvDaoImpl) table() string {
	return "kv_tab"
}

func (k *kvDaoImpl) Get(ctx context.Context, key string) (string, bool, error) {
	where := map[string]interface{}{
		"kv_key": key,
		"_limit": []uint{0, 1},
	}
	rs := make([]*entity.KVItem, 0, 1)
	if err := dbkit.SimpleQuery(ctx, k.dbc, k.table(), where, &rs, dbkit.ScanWithTagName("json")); err != nil {
		return "", false, err
	}
	if len(rs) == 0 {
		return "", false, nil
	}
	return rs[0].KVValue, true, nil
}

func (k *kvDaoImpl) Set(ctx context.Context, key string, value string) error {
	now := time.Now().UnixMilli()
	data := []map[string]interface{}{
		{
			"kv_key":   key,
			"kv_value": value,
			"ctime":    now,
			"mtime":    now,
		},
	}
	sql, args, err := builder.BuildReplaceInsert(k.table(), data)
	if err != nil {
		return err
	}
	if _, err := k.dbc.ExecContext(ctx, sql, args...); err != nil {
		return err
	}
	return nil
}

func (k *kvDaoImpl) Del(ctx context.Context, key string) error {
	where := map[string]interface{}{
		"kv_key": key,
	}
	sql, args, err := builder.BuildDelete(k.table(), where)
	if err != nil {
		return err
	}
	if _, err := k.dbc.ExecContext(ctx, sql, args...); err != nil {
		return err
	}
	return nil
}
