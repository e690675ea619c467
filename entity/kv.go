package entity

type KVItem struct {
	Id      uint64 `json:"id"`
	KVKey   string `json:"kv_key"`
	KVValue string `json:"kv_value"`
	Ctime   int64  `json:"ctime"`
	Mtime   int64  `json:"mtime"`
}
