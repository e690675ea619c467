package backup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/idgen"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/kvstore"
	"go.uber.org/zap"
)

const (
	BackupVersion = "1.0.0"

	defaultBackupsKey = "github-release-backups"
	defaultMaxBackups = 10
	defaultMaxPayload = 8 * 1024 * 1024
	// mirrorUrl, theme, accessToken
	settingsFieldCount = 3
)

var (
	ErrBackupNotFound    = errors.New("backup not found")
	ErrInvalidBackup     = errors.New("invalid backup data")
	ErrUnsupportedFormat = errors.New("unsupported backup format")
	ErrNoRemote          = errors.New("no remote storage configured")
)

type ISettingsStore interface {
	Load(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, st *entity.Settings) error
}

type IPresetStore interface {
	Load(ctx context.Context) ([]*entity.Preset, error)
	Save(ctx context.Context, ps []*entity.Preset) error
}

type Store struct {
	c *config
}

func New(opts ...Option) (*Store, error) {
	c := &config{
		maxBackups: defaultMaxBackups,
		maxPayload: defaultMaxPayload,
		now:        timeNow,
		idgen:      idgen.Default().NextId,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.kv == nil {
		return nil, fmt.Errorf("no kv store found")
	}
	if c.settings == nil || c.presets == nil {
		return nil, fmt.Errorf("no settings/preset store found")
	}
	if c.maxBackups <= 0 {
		c.maxBackups = defaultMaxBackups
	}
	if c.maxPayload <= 0 {
		c.maxPayload = defaultMaxPayload
	}
	return &Store{c: c}, nil
}

func (s *Store) nowMilli() int64 {
	return s.c.now().UnixMilli()
}

func (s *Store) snapshot(ctx context.Context) (*entity.BackupData, error) {
	st, err := s.c.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings failed, err:%w", err)
	}
	ps, err := s.c.presets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load presets failed, err:%w", err)
	}
	if ps == nil {
		ps = []*entity.Preset{}
	}
	return &entity.BackupData{
		Version:   BackupVersion,
		Timestamp: s.nowMilli(),
		Settings:  st,
		Presets:   ps,
	}, nil
}

func (s *Store) loadAll(ctx context.Context) (map[string]*entity.BackupRecord, error) {
	m := make(map[string]*entity.BackupRecord)
	if _, err := kvstore.LoadJSON(ctx, s.c.kv, defaultBackupsKey, &m); err != nil {
		if !errors.Is(err, kvstore.ErrDecodeValue) {
			return nil, fmt.Errorf("read backups failed, err:%w", err)
		}
		logutil.GetLogger(ctx).Error("decode backups failed, treat as empty", zap.Error(err))
		return make(map[string]*entity.BackupRecord), nil
	}
	if m == nil {
		m = make(map[string]*entity.BackupRecord)
	}
	for id, rec := range m {
		if rec == nil || rec.Data == nil || rec.Metadata == nil {
			delete(m, id)
			continue
		}
		rec.ID = id
	}
	return m, nil
}

func sortNewestFirst(rs []*entity.BackupRecord) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Metadata.Timestamp != rs[j].Metadata.Timestamp {
			return rs[i].Metadata.Timestamp > rs[j].Metadata.Timestamp
		}
		return rs[i].ID > rs[j].ID
	})
}

func (s *Store) saveAll(ctx context.Context, m map[string]*entity.BackupRecord) error {
	if len(m) > s.c.maxBackups {
		rs := make([]*entity.BackupRecord, 0, len(m))
		for _, rec := range m {
			rs = append(rs, rec)
		}
		sortNewestFirst(rs)
		for _, rec := range rs[s.c.maxBackups:] {
			logutil.GetLogger(ctx).Info("evict old backup", zap.String("id", rec.ID), zap.String("name", rec.Metadata.Name))
			delete(m, rec.ID)
		}
	}
	return kvstore.SaveJSON(ctx, s.c.kv, defaultBackupsKey, m)
}

func (s *Store) insert(ctx context.Context, rec *entity.BackupRecord) error {
	m, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	m[rec.ID] = rec
	return s.saveAll(ctx, m)
}

func buildMetadata(name, desc string, data *entity.BackupData) (*entity.BackupMetadata, error) {
	sum, err := checksum(data)
	if err != nil {
		return nil, err
	}
	return &entity.BackupMetadata{
		Name:          name,
		Description:   desc,
		Timestamp:     data.Timestamp,
		Version:       data.Version,
		SettingsCount: settingsFieldCount,
		PresetsCount:  len(data.Presets),
		Checksum:      sum,
	}, nil
}

// Create snapshots the current settings and presets as a new local backup.
func (s *Store) Create(ctx context.Context, name string, desc string) (*entity.BackupRecord, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		name = "backup " + s.c.now().Format("2006-01-02 15:04:05")
	}
	meta, err := buildMetadata(name, strings.TrimSpace(desc), data)
	if err != nil {
		return nil, err
	}
	rec := &entity.BackupRecord{
		ID:       fmt.Sprintf("backup_%d", s.c.idgen()),
		Data:     data,
		Metadata: meta,
	}
	if err := s.insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("save backup failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("backup created", zap.String("id", rec.ID), zap.String("name", name),
		zap.Int("presets", meta.PresetsCount))
	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]*entity.BackupRecord, error) {
	m, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	rs := make([]*entity.BackupRecord, 0, len(m))
	for _, rec := range m {
		rs = append(rs, rec)
	}
	sortNewestFirst(rs)
	return rs, nil
}

func (s *Store) Get(ctx context.Context, id string) (*entity.BackupRecord, error) {
	m, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("id:%s, err:%w", id, ErrBackupNotFound)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	m, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[id]; !ok {
		return fmt.Errorf("id:%s, err:%w", id, ErrBackupNotFound)
	}
	delete(m, id)
	return s.saveAll(ctx, m)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.c.kv.Del(ctx, defaultBackupsKey)
}

func validate(data *entity.BackupData) error {
	if data == nil || len(data.Version) == 0 || data.Settings == nil || data.Presets == nil {
		return ErrInvalidBackup
	}
	return nil
}

func (s *Store) apply(ctx context.Context, data *entity.BackupData) error {
	if err := validate(data); err != nil {
		return err
	}
	if data.Version != BackupVersion {
		logutil.GetLogger(ctx).Warn("backup version mismatch, try restore anyway",
			zap.String("backup_version", data.Version), zap.String("current_version", BackupVersion))
	}
	st := entity.DefaultSettings()
	*st = *data.Settings
	if !entity.IsValidTheme(st.Theme) {
		st.Theme = entity.ThemeBlue
	}
	if err := s.c.settings.Save(ctx, st); err != nil {
		return fmt.Errorf("restore settings failed, err:%w", err)
	}
	if err := s.c.presets.Save(ctx, data.Presets); err != nil {
		return fmt.Errorf("restore presets failed, err:%w", err)
	}
	return nil
}

// Restore overwrites the current settings and presets with the backup content.
func (s *Store) Restore(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.apply(ctx, rec.Data); err != nil {
		return fmt.Errorf("restore backup failed, id:%s, err:%w", id, err)
	}
	logutil.GetLogger(ctx).Info("backup restored", zap.String("id", id), zap.String("name", rec.Metadata.Name))
	return nil
}
