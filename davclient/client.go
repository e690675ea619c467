package davclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrParentMissing = errors.New("cannot create directory, parent missing")
)

// BackupFile is one entry of a remote directory listing.
type BackupFile struct {
	Name         string
	Size         int64
	LastModified string
}

// ModTime parses LastModified, which servers send as an http date.
func (f *BackupFile) ModTime() (time.Time, error) {
	return http.ParseTime(f.LastModified)
}

// StatusError carries an unexpected http status and the response body.
type StatusError struct {
	Method string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s failed: HTTP %d", strings.ToLower(e.Method), e.Code)
	}
	return fmt.Sprintf("%s failed: HTTP %d - %s", strings.ToLower(e.Method), e.Code, e.Body)
}

type IClient interface {
	TestConnection(ctx context.Context) bool
	CreateDirectory(ctx context.Context, dir string) error
	UploadFile(ctx context.Context, data []byte, name string) error
	DownloadFile(ctx context.Context, name string) ([]byte, error)
	FileExists(ctx context.Context, name string) bool
	ListFiles(ctx context.Context) ([]*BackupFile, error)
}
