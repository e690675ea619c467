package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/entity"
	"github.com/xxxsen/ghrelease/utils"
	"go.uber.org/zap"
)

const (
	jsonMimeType     = "application/json"
	exportFilePrefix = "github-release-backup-"
)

var timeNow = time.Now

// exportDoc is the flat on-disk layout: data fields plus an embedded metadata object.
type exportDoc struct {
	*entity.BackupData
	Metadata *entity.BackupMetadata `json:"metadata,omitempty"`
}

type importDoc struct {
	entity.BackupData
	Data     *entity.BackupData     `json:"data"`
	Metadata *entity.BackupMetadata `json:"metadata"`
}

func checksum(data *entity.BackupData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode backup data failed, err:%w", err)
	}
	return utils.Checksum(raw), nil
}

// readPayload sniffs the head of r and only buffers plain json documents up to the size limit.
// json subtypes such as geojson or gltf are rejected.
func (s *Store) readPayload(r io.Reader) ([]byte, error) {
	head := &bytes.Buffer{}
	mt, err := mimetype.DetectReader(io.TeeReader(r, head))
	if err != nil {
		return nil, fmt.Errorf("read payload head failed, err:%w", err)
	}
	if !mt.Is(jsonMimeType) {
		return nil, fmt.Errorf("payload type:%s, err:%w", mt.String(), ErrUnsupportedFormat)
	}
	raw, err := io.ReadAll(io.LimitReader(io.MultiReader(head, r), s.c.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("read payload failed, err:%w", err)
	}
	if int64(len(raw)) > s.c.maxPayload {
		return nil, fmt.Errorf("payload exceeds %d bytes, err:%w", s.c.maxPayload, ErrUnsupportedFormat)
	}
	return raw, nil
}

// decodeBackup accepts {data, metadata}, flat data with metadata, or bare flat data.
// The returned metadata is nil when the payload carries none.
func decodeBackup(raw []byte) (*entity.BackupData, *entity.BackupMetadata, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil, ErrUnsupportedFormat
	}
	doc := &importDoc{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, nil, fmt.Errorf("decode backup failed, err:%w", ErrUnsupportedFormat)
	}
	if doc.Data != nil {
		if err := validate(doc.Data); err != nil {
			return nil, nil, err
		}
		return doc.Data, doc.Metadata, nil
	}
	flat := &doc.BackupData
	if len(flat.Version) == 0 && flat.Settings == nil && flat.Presets == nil {
		return nil, nil, ErrUnsupportedFormat
	}
	if err := validate(flat); err != nil {
		return nil, nil, err
	}
	return flat, doc.Metadata, nil
}

func (s *Store) Export(ctx context.Context, id string, w io.Writer) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&exportDoc{BackupData: rec.Data, Metadata: rec.Metadata}); err != nil {
		return fmt.Errorf("encode backup failed, id:%s, err:%w", id, err)
	}
	return nil
}

// ExportFileName names an exported backup, e.g. github-release-backup-daily-2024-01-01.json.
func ExportFileName(meta *entity.BackupMetadata) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, meta.Name)
	day := time.UnixMilli(meta.Timestamp).UTC().Format("2006-01-02")
	return exportFilePrefix + name + "-" + day + ".json"
}

// ExportToFile writes the backup into dir and returns the file path.
func (s *Store) ExportToFile(ctx context.Context, id string, dir string) (string, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if err := s.Export(ctx, id, buf); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, ExportFileName(rec.Metadata))
	if err := utils.SafeSaveIOToFile(dst, buf); err != nil {
		return "", fmt.Errorf("save export file failed, file:%s, err:%w", dst, err)
	}
	logutil.GetLogger(ctx).Info("backup exported", zap.String("id", id), zap.String("file", dst))
	return dst, nil
}

func (s *Store) importRaw(ctx context.Context, raw []byte, fallbackName string) (*entity.BackupRecord, error) {
	data, meta, err := decodeBackup(raw)
	if err != nil {
		return nil, err
	}
	if data.Version != BackupVersion {
		logutil.GetLogger(ctx).Warn("import backup with different version",
			zap.String("backup_version", data.Version), zap.String("current_version", BackupVersion))
	}
	if data.Timestamp == 0 {
		data.Timestamp = s.nowMilli()
	}
	sum, err := checksum(data)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta, err = buildMetadata(fallbackName, "", data)
		if err != nil {
			return nil, err
		}
	}
	meta.Checksum = sum
	meta.PresetsCount = len(data.Presets)
	meta.SettingsCount = settingsFieldCount
	if len(meta.Version) == 0 {
		meta.Version = data.Version
	}
	if meta.Timestamp == 0 {
		meta.Timestamp = data.Timestamp
	}
	m, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range m {
		if rec.Metadata.Checksum == sum {
			logutil.GetLogger(ctx).Info("same backup already exists, skip import", zap.String("id", rec.ID))
			return rec, nil
		}
	}
	rec := &entity.BackupRecord{
		ID:       fmt.Sprintf("backup_import_%d", s.c.idgen()),
		Data:     data,
		Metadata: meta,
	}
	m[rec.ID] = rec
	if err := s.saveAll(ctx, m); err != nil {
		return nil, fmt.Errorf("save imported backup failed, err:%w", err)
	}
	return rec, nil
}

// Import reads an exported backup file and keeps it as a local backup.
func (s *Store) Import(ctx context.Context, r io.Reader) (*entity.BackupRecord, error) {
	raw, err := s.readPayload(r)
	if err != nil {
		return nil, fmt.Errorf("import backup failed, err:%w", err)
	}
	rec, err := s.importRaw(ctx, raw, "imported "+s.c.now().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("import backup failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("backup imported", zap.String("id", rec.ID), zap.String("name", rec.Metadata.Name))
	return rec, nil
}
