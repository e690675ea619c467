package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrDecodeValue = errors.New("decode stored value failed")
)

// IKVStore is the persistence backend shared by the settings, preset and backup services.
type IKVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Del(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored at key into v. It reports false when the key is absent,
// a broken value yields ErrDecodeValue.
func LoadJSON(ctx context.Context, s IKVStore, key string, v interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read key failed, key:%s, err:%w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("key:%s, err:%w, cause:%v", key, ErrDecodeValue, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s IKVStore, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json failed, key:%s, err:%w", key, err)
	}
	if err := s.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write key failed, key:%s, err:%w", key, err)
	}
	return nil
}
