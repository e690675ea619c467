package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/ghrelease/davclient"
	"github.com/xxxsen/ghrelease/entity"
	"go.uber.org/zap"
)

func (s *Store) remote() (davclient.IClient, error) {
	if s.c.remote == nil {
		return nil, ErrNoRemote
	}
	return s.c.remote, nil
}

// PushRemote uploads the current settings and presets, returns the remote file name.
func (s *Store) PushRemote(ctx context.Context) (string, error) {
	cli, err := s.remote()
	if err != nil {
		return "", err
	}
	data, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup failed, err:%w", err)
	}
	name := davclient.BackupFileName(time.UnixMilli(data.Timestamp))
	if err := cli.UploadFile(ctx, raw, name); err != nil {
		return "", fmt.Errorf("upload backup failed, name:%s, err:%w", name, err)
	}
	logutil.GetLogger(ctx).Info("backup pushed to remote", zap.String("name", name), zap.Int("size", len(raw)))
	return name, nil
}

func remoteFileTime(f *davclient.BackupFile) time.Time {
	if t, ok := davclient.BackupFileTime(f.Name); ok {
		return t
	}
	if t, err := f.ModTime(); err == nil {
		return t
	}
	return time.Time{}
}

// ListRemote lists the remote backups, newest first.
func (s *Store) ListRemote(ctx context.Context) ([]*davclient.BackupFile, error) {
	cli, err := s.remote()
	if err != nil {
		return nil, err
	}
	fs, err := cli.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote backups failed, err:%w", err)
	}
	sort.SliceStable(fs, func(i, j int) bool {
		ti, tj := remoteFileTime(fs[i]), remoteFileTime(fs[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return fs[i].Name > fs[j].Name
	})
	return fs, nil
}

func (s *Store) download(ctx context.Context, name string) ([]byte, error) {
	cli, err := s.remote()
	if err != nil {
		return nil, err
	}
	raw, err := cli.DownloadFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("download backup failed, name:%s, err:%w", name, err)
	}
	raw, err = s.readPayload(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("check remote backup failed, name:%s, err:%w", name, err)
	}
	return raw, nil
}

func (s *Store) FetchRemote(ctx context.Context, name string) (*entity.BackupData, error) {
	raw, err := s.download(ctx, name)
	if err != nil {
		return nil, err
	}
	data, _, err := decodeBackup(raw)
	if err != nil {
		return nil, fmt.Errorf("decode remote backup failed, name:%s, err:%w", name, err)
	}
	return data, nil
}

// RestoreRemote applies a remote backup without keeping a local copy.
func (s *Store) RestoreRemote(ctx context.Context, name string) error {
	data, err := s.FetchRemote(ctx, name)
	if err != nil {
		return err
	}
	if err := s.apply(ctx, data); err != nil {
		return fmt.Errorf("restore remote backup failed, name:%s, err:%w", name, err)
	}
	logutil.GetLogger(ctx).Info("remote backup restored", zap.String("name", name))
	return nil
}

// PullRemote keeps a remote backup as a local one.
func (s *Store) PullRemote(ctx context.Context, name string) (*entity.BackupRecord, error) {
	raw, err := s.download(ctx, name)
	if err != nil {
		return nil, err
	}
	rec, err := s.importRaw(ctx, raw, name)
	if err != nil {
		return nil, fmt.Errorf("pull remote backup failed, name:%s, err:%w", name, err)
	}
	return rec, nil
}
