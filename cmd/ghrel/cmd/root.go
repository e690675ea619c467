package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/idgen"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/backup"
	"github.com/xxxsen/ghrelease/config"
	"github.com/xxxsen/ghrelease/dao"
	"github.com/xxxsen/ghrelease/dao/cache"
	"github.com/xxxsen/ghrelease/davclient"
	"github.com/xxxsen/ghrelease/db"
	"github.com/xxxsen/ghrelease/github"
	"github.com/xxxsen/ghrelease/kvstore"
	"github.com/xxxsen/ghrelease/preset"
	"github.com/xxxsen/ghrelease/settings"
	"go.uber.org/zap"
)

const (
	defaultConfigFileEnv = "GHREL_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	Config   *config.Config
	KV       kvstore.IKVStore
	Settings *settings.Service
	Presets  *preset.Service
	Backup   *backup.Store
	Dav      davclient.IClient //nil if webdav is not configured
	Github   github.IClient
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func loadConfig(cfgs []string) (*config.Config, error) {
	var err error = fmt.Errorf("no config file given")
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		var c *config.Config
		c, err = config.Parse(cfg)
		if err != nil {
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("no valid config file found, last err:%w", err)
}

func buildDavClient(c *config.WebdavConfig) (davclient.IClient, error) {
	if !c.Enabled() {
		return nil, nil
	}
	return davclient.New(
		davclient.WithBaseURL(c.BaseURL),
		davclient.WithAuth(c.Username, c.Password),
		davclient.WithRemotePath(c.RemotePath),
		davclient.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Timeout) * time.Second}),
	)
}

func buildGithubClient(ctx context.Context, c *config.GithubConfig, st *settings.Service) (github.IClient, error) {
	token := c.Token
	if len(token) == 0 {
		t, err := st.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}
	cc, err := github.NewCache(c.CacheKind, c.CacheSize, time.Duration(c.CacheTTL)*time.Second)
	if err != nil {
		return nil, err
	}
	return github.New(
		github.WithAPIBase(c.APIBase),
		github.WithToken(token),
		github.WithPerPage(c.PerPage),
		github.WithCache(cc),
	)
}

func initContext(ctx *Context, cfgs []string) error {
	c, err := loadConfig(cfgs)
	if err != nil {
		return err
	}
	ctx.Config = c
	logitem := c.LogInfo
	logger.Init(logitem.File, logitem.Level, int(logitem.FileCount), int(logitem.FileSize), int(logitem.KeepDays), logitem.Console)
	if err := idgen.Init(1); err != nil {
		return fmt.Errorf("init idgen failed, err:%w", err)
	}
	if err := db.InitDB(c.DBFile); err != nil {
		return fmt.Errorf("init db failed, err:%w", err)
	}
	ctx.KV = cache.NewKVDao(dao.NewKVDao(db.GetClient()))
	ctx.Settings = settings.New(ctx.KV)
	ctx.Presets = preset.New(ctx.KV)
	dav, err := buildDavClient(&c.Webdav)
	if err != nil {
		return fmt.Errorf("init webdav client failed, err:%w", err)
	}
	ctx.Dav = dav
	opts := []backup.Option{
		backup.WithKVStore(ctx.KV),
		backup.WithSettingsStore(ctx.Settings),
		backup.WithPresetStore(ctx.Presets),
	}
	if dav != nil {
		opts = append(opts, backup.WithRemote(dav))
	}
	ctx.Backup, err = backup.New(opts...)
	if err != nil {
		return fmt.Errorf("init backup store failed, err:%w", err)
	}
	ctx.Github, err = buildGithubClient(context.Background(), &c.Github, ctx.Settings)
	if err != nil {
		return fmt.Errorf("init github client failed, err:%w", err)
	}
	logutil.GetLogger(context.Background()).Debug("init context succ",
		zap.String("db_file", c.DBFile), zap.Bool("webdav", c.Webdav.Enabled()), zap.String("github_cache", c.Github.CacheKind))
	return nil
}

func (c *Context) requireDav() (davclient.IClient, error) {
	if c.Dav == nil {
		return nil, fmt.Errorf("webdav is not configured, set webdav.base_url in config")
	}
	return c.Dav, nil
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "ghrel",
		Short:         "GitHub release browser with webdav backed preference backups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, "/etc/ghrel/ghrel_config.json", envConfigFile})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
