package db

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/sqlite"
)

var (
	dbClient database.IDatabase
)

var sqllist = []struct {
	name string
	sql  string
}{
	{
		name: "init_kv_tab",
		sql: `
CREATE TABLE IF NOT EXISTS kv_tab (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    kv_key    TEXT NOT NULL,
    kv_value  TEXT NOT NULL,
    ctime     INTEGER,
    mtime     INTEGER,
    UNIQUE (kv_key)
);
		`,
	},
}

func InitDB(file string) error {
	ctx := context.Background()
	db, err := sqlite.New(file, func(db database.IDatabase) error {
		for _, item := range sqllist {
			if _, err := db.ExecContext(ctx, item.sql); err != nil {
				return fmt.Errorf("init sql failed, sql:%s, err:%w", item.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	dbClient = db
	return nil
}

func GetClient() database.IDatabase {
	return dbClient
}
