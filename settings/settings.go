package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/kvstore"
	"go.uber.org/zap"
)

const (
	defaultSettingsKey = "github-release-downloader-settings"
)

var (
	ErrInvalidTheme = errors.New("invalid theme")
)

type Service struct {
	kv kvstore.IKVStore
}

func New(kv kvstore.IKVStore) *Service {
	return &Service{kv: kv}
}

// Load returns the stored settings merged over the defaults. A broken record yields the defaults.
func (s *Service) Load(ctx context.Context) (*entity.Settings, error) {
	st := entity.DefaultSettings()
	if _, err := kvstore.LoadJSON(ctx, s.kv, defaultSettingsKey, st); err != nil {
		if !errors.Is(err, kvstore.ErrDecodeValue) {
			return nil, fmt.Errorf("read settings failed, err:%w", err)
		}
		logutil.GetLogger(ctx).Error("decode settings failed, use default", zap.Error(err))
		return entity.DefaultSettings(), nil
	}
	if len(st.Theme) == 0 {
		st.Theme = entity.ThemeBlue
	}
	return st, nil
}

func (s *Service) Save(ctx context.Context, st *entity.Settings) error {
	return kvstore.SaveJSON(ctx, s.kv, defaultSettingsKey, st)
}

func (s *Service) update(ctx context.Context, fn func(st *entity.Settings)) error {
	st, err := s.Load(ctx)
	if err != nil {
		return err
	}
	fn(st)
	return s.Save(ctx, st)
}

// MirrorURL returns the configured download mirror, ending with '/' unless it ends with '='.
func (s *Service) MirrorURL(ctx context.Context) (string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	u := st.MirrorURL
	if len(u) == 0 {
		return "", nil
	}
	if !strings.HasSuffix(u, "/") && !strings.HasSuffix(u, "=") {
		u += "/"
	}
	return u, nil
}

func (s *Service) SetMirrorURL(ctx context.Context, u string) error {
	return s.update(ctx, func(st *entity.Settings) {
		st.MirrorURL = strings.TrimSpace(u)
	})
}

// MirrorDownloadURL prefixes link with the mirror, if one is set.
func (s *Service) MirrorDownloadURL(ctx context.Context, link string) (string, error) {
	mirror, err := s.MirrorURL(ctx)
	if err != nil {
		return "", err
	}
	return mirror + link, nil
}

func (s *Service) AccessToken(ctx context.Context) (string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return st.AccessToken, nil
}

func (s *Service) SetAccessToken(ctx context.Context, token string) error {
	return s.update(ctx, func(st *entity.Settings) {
		st.AccessToken = strings.TrimSpace(token)
	})
}

func (s *Service) Theme(ctx context.Context) (string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return st.Theme, nil
}

func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if !entity.IsValidTheme(theme) {
		return fmt.Errorf("theme:%s, err:%w", theme, ErrInvalidTheme)
	}
	return s.update(ctx, func(st *entity.Settings) {
		st.Theme = theme
	})
}
