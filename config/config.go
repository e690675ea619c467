package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type WebdavConfig struct {
	BaseURL    string `json:"base_url"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	RemotePath string `json:"remote_path"`
	Timeout    int64  `json:"timeout"` //second
}

func (w *WebdavConfig) Enabled() bool {
	return len(w.BaseURL) > 0
}

type GithubConfig struct {
	APIBase   string `json:"api_base"`
	Token     string `json:"token"` //优先级高于settings中保存的token
	PerPage   int    `json:"per_page"`
	CacheKind string `json:"cache_kind"` //ristretto, lru, none
	CacheSize int    `json:"cache_size"`
	CacheTTL  int64  `json:"cache_ttl"` //second, lru 时 <=0 表示不过期
}

type Config struct {
	LogInfo logger.LogConfig `json:"log_info"`
	DBFile  string           `json:"db_file"`
	Webdav  WebdavConfig     `json:"webdav"`
	Github  GithubConfig     `json:"github"`
	Thread  int              `json:"thread"`
}

func Default() *Config {
	return &Config{
		LogInfo: logger.LogConfig{
			Level:   "info",
			Console: true,
		},
		DBFile: "./ghrel.db",
		Webdav: WebdavConfig{
			RemotePath: "/github-release-backups",
			Timeout:    60,
		},
		Github: GithubConfig{
			APIBase:   "https://api.github.com",
			PerPage:   30,
			CacheKind: "ristretto",
			CacheSize: 256,
			CacheTTL:  300,
		},
		Thread: 4,
	}
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := Default()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	return c, nil
}
