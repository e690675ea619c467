package davclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	defaultUserAgent = "ghrel-webdav-client/1.0"
	methodPropfind   = "PROPFIND"
	methodMkcol      = "MKCOL"
)

const propfindAllprop = `<?xml version="1.0" encoding="utf-8"?>
<propfind xmlns="DAV:">
  <allprop/>
</propfind>`

var (
	defaultHttpClient = &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			IdleConnTimeout:     20 * time.Second,
			MaxIdleConns:        5,
			MaxIdleConnsPerHost: 1,
		},
	}
)

type collectionState int

const (
	collectionSkipped collectionState = iota
	collectionCreated
	collectionExisted
)

type defaultClient struct {
	c *config
}

func New(opts ...Option) (IClient, error) {
	c := &config{
		UserAgent: defaultUserAgent,
		Client:    defaultHttpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.BaseURL) == 0 {
		return nil, fmt.Errorf("no base url found")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	return &defaultClient{c: c}, nil
}

func normalizePath(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func (d *defaultClient) dirURL(dir string) string {
	return d.c.BaseURL + strings.TrimPrefix(normalizePath(dir), "/")
}

// fileURL escapes name, listed names come back unescaped.
func (d *defaultClient) fileURL(name string) string {
	return d.dirURL(d.c.RemotePath) + url.PathEscape(name)
}

func (d *defaultClient) applyAuth(req *http.Request) {
	req.SetBasicAuth(d.c.Username, d.c.Password)
	req.Header.Set("User-Agent", d.c.UserAgent)
}

func (d *defaultClient) do(ctx context.Context, method string, link string, body []byte, hdr map[string]string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, link, r)
	if err != nil {
		return nil, err
	}
	d.applyAuth(req)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return d.c.Client.Do(req)
}

// call issues a request and drains the response, for verbs whose body is only used in error messages.
func (d *defaultClient) call(ctx context.Context, method string, link string, body []byte, hdr map[string]string) (int, string, error) {
	rsp, err := d.do(ctx, method, link, body, hdr)
	if err != nil {
		return 0, "", err
	}
	defer rsp.Body.Close()
	raw, _ := io.ReadAll(rsp.Body)
	return rsp.StatusCode, string(raw), nil
}

func (d *defaultClient) TestConnection(ctx context.Context) bool {
	code, _, err := d.call(ctx, http.MethodOptions, d.c.BaseURL, nil, nil)
	if err != nil {
		logutil.GetLogger(ctx).Error("test connection failed", zap.String("url", d.c.BaseURL), zap.Error(err))
		return false
	}
	switch code {
	case http.StatusOK, http.StatusNoContent, http.StatusMethodNotAllowed:
		return true
	}
	code, _, err = d.call(ctx, methodPropfind, d.c.BaseURL, []byte(propfindAllprop), map[string]string{
		"Depth":        "0",
		"Content-Type": "application/xml",
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("test connection by propfind failed", zap.String("url", d.c.BaseURL), zap.Error(err))
		return false
	}
	return code == http.StatusMultiStatus || code == http.StatusOK
}

func mkcolState(code int) (collectionState, bool) {
	switch code {
	case http.StatusCreated, http.StatusNoContent:
		return collectionCreated, true
	case http.StatusMethodNotAllowed: //already exists, or the server tolerates a missing MKCOL
		return collectionExisted, true
	}
	return collectionSkipped, false
}

// ensureCollection makes sure dir exists on the server, creating missing parents one level at a time.
// After the parent is in place the MKCOL is retried exactly once.
func (d *defaultClient) ensureCollection(ctx context.Context, dir string) (collectionState, error) {
	dir = strings.TrimRight(dir, "/")
	if len(dir) == 0 {
		return collectionSkipped, nil
	}
	code, body, err := d.call(ctx, methodMkcol, d.dirURL(dir), nil, nil)
	if err != nil {
		return collectionSkipped, err
	}
	if st, ok := mkcolState(code); ok {
		return st, nil
	}
	if code != http.StatusConflict && code != http.StatusNotFound {
		return collectionSkipped, &StatusError{Method: methodMkcol, Code: code, Body: body}
	}
	idx := strings.LastIndex(dir, "/")
	if idx <= 0 {
		return collectionSkipped, fmt.Errorf("dir:%s, err:%w", dir, ErrParentMissing)
	}
	parent := dir[:idx]
	if _, err := d.ensureCollection(ctx, parent); err != nil {
		return collectionSkipped, fmt.Errorf("create parent failed, parent:%s, err:%w", parent, err)
	}
	code, body, err = d.call(ctx, methodMkcol, d.dirURL(dir), nil, nil)
	if err != nil {
		return collectionSkipped, err
	}
	if st, ok := mkcolState(code); ok {
		return st, nil
	}
	return collectionSkipped, &StatusError{Method: methodMkcol, Code: code, Body: body}
}

func (d *defaultClient) CreateDirectory(ctx context.Context, dir string) error {
	st, err := d.ensureCollection(ctx, dir)
	if err != nil {
		logutil.GetLogger(ctx).Error("create directory failed", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("create directory failed, dir:%s, err:%w", dir, err)
	}
	logutil.GetLogger(ctx).Debug("ensure directory succ", zap.String("dir", dir), zap.Int("state", int(st)))
	return nil
}

func isPutSucc(code int) bool {
	return code == http.StatusOK || code == http.StatusCreated || code == http.StatusNoContent
}

func (d *defaultClient) put(ctx context.Context, link string, data []byte) (int, string, error) {
	return d.call(ctx, http.MethodPut, link, data, map[string]string{
		"Content-Type": "application/octet-stream",
	})
}

func (d *defaultClient) UploadFile(ctx context.Context, data []byte, name string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("name", name), zap.Int("size", len(data)))
	if _, err := d.ensureCollection(ctx, d.c.RemotePath); err != nil {
		//some servers accept writes into collections they create implicitly
		logger.Warn("ensure remote directory failed, continue upload", zap.String("dir", d.c.RemotePath), zap.Error(err))
	}
	link := d.fileURL(name)
	code, body, err := d.put(ctx, link, data)
	if err != nil {
		logger.Error("upload file failed", zap.Error(err))
		return fmt.Errorf("upload file failed, name:%s, err:%w", name, err)
	}
	if isPutSucc(code) {
		return nil
	}
	if code != http.StatusConflict {
		logger.Error("upload file failed", zap.Int("code", code))
		return &StatusError{Method: http.MethodPut, Code: code, Body: body}
	}
	logger.Warn("upload conflict, recreate directory and retry")
	if _, err := d.ensureCollection(ctx, d.c.RemotePath); err != nil {
		return fmt.Errorf("upload failed, directory conflict and cannot create, err:%w", err)
	}
	code, body, err = d.put(ctx, link, data)
	if err != nil {
		return fmt.Errorf("upload retry failed, err:%w", err)
	}
	if !isPutSucc(code) {
		return fmt.Errorf("upload retry failed, err:%w", &StatusError{Method: http.MethodPut, Code: code, Body: body})
	}
	return nil
}

func (d *defaultClient) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	rsp, err := d.do(ctx, http.MethodGet, d.fileURL(name), nil, nil)
	if err != nil {
		logutil.GetLogger(ctx).Error("download file failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("download file failed, name:%s, err:%w", name, err)
	}
	defer rsp.Body.Close()
	switch rsp.StatusCode {
	case http.StatusOK:
		raw, err := io.ReadAll(rsp.Body)
		if err != nil {
			return nil, fmt.Errorf("read download body failed, name:%s, err:%w", name, err)
		}
		return raw, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("name:%s, err:%w", name, ErrFileNotFound)
	}
	raw, _ := io.ReadAll(rsp.Body)
	return nil, &StatusError{Method: http.MethodGet, Code: rsp.StatusCode, Body: string(raw)}
}

func (d *defaultClient) FileExists(ctx context.Context, name string) bool {
	code, _, err := d.call(ctx, http.MethodHead, d.fileURL(name), nil, nil)
	if err != nil {
		logutil.GetLogger(ctx).Debug("check file exists failed", zap.String("name", name), zap.Error(err))
		return false
	}
	return code == http.StatusOK
}

func (d *defaultClient) ListFiles(ctx context.Context) ([]*BackupFile, error) {
	rsp, err := d.do(ctx, methodPropfind, d.dirURL(d.c.RemotePath), []byte(propfindAllprop), map[string]string{
		"Depth":        "1",
		"Content-Type": "application/xml",
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("list files failed", zap.String("dir", d.c.RemotePath), zap.Error(err))
		return nil, fmt.Errorf("list files failed, err:%w", err)
	}
	defer rsp.Body.Close()
	switch rsp.StatusCode {
	case http.StatusMultiStatus:
		files, err := parseMultistatus(rsp.Body)
		if err != nil {
			logutil.GetLogger(ctx).Error("parse propfind response failed", zap.Int("parsed", len(files)), zap.Error(err))
			return nil, fmt.Errorf("parse propfind response failed, err:%w", err)
		}
		return files, nil
	case http.StatusOK:
		files, err := parseMultistatus(rsp.Body)
		if err != nil {
			logutil.GetLogger(ctx).Warn("parse propfind response with status 200 failed, treat as empty", zap.Error(err))
			return []*BackupFile{}, nil
		}
		return files, nil
	case http.StatusNotFound:
		return []*BackupFile{}, nil
	}
	raw, _ := io.ReadAll(rsp.Body)
	return nil, &StatusError{Method: methodPropfind, Code: rsp.StatusCode, Body: string(raw)}
}
