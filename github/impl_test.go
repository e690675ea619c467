package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/ghrelease/cacheapi"
)

const releasesBody = `[
 {"id":1,"tag_name":"v1.1.0","name":null,"prerelease":false,"draft":false,
  "assets":[{"id":11,"name":"app-linux-amd64.tar.gz","size":2048,"download_count":7,
   "browser_download_url":"https://github.com/o/r/releases/download/v1.1.0/app-linux-amd64.tar.gz",
   "content_type":"application/gzip"}],
  "author":{"login":"bot"}},
 {"id":2,"tag_name":"v1.0.0","name":"First","prerelease":true,"assets":[]}
]`

type fakeGithub struct {
	url     string
	hits    int32
	lastReq *http.Request
}

func (f *fakeGithub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.hits, 1)
	f.lastReq = r
	switch r.URL.Path {
	case "/repos/o/r":
		_, _ = w.Write([]byte(`{"id":9,"name":"r","full_name":"o/r","description":null,"stargazers_count":12,"owner":{"login":"o"}}`))
	case "/repos/o/r/releases":
		_, _ = w.Write([]byte(releasesBody))
	case "/users/o":
		_, _ = w.Write([]byte(`{"login":"o","avatar_url":"https://avatars/o"}`))
	case "/users/o/repos":
		_, _ = w.Write([]byte(`[{"id":9,"name":"r","full_name":"o/r"}]`))
	case "/repos/limited/r":
		w.WriteHeader(http.StatusForbidden)
	case "/repos/broken/r":
		w.WriteHeader(http.StatusBadGateway)
	case "/download/app.tar.gz":
		_, _ = w.Write([]byte("binary-content"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, opts ...Option) (IClient, *fakeGithub) {
	fk := &fakeGithub{}
	srv := httptest.NewServer(fk)
	t.Cleanup(srv.Close)
	fk.url = srv.URL
	base := []Option{WithAPIBase(srv.URL + "/"), WithRetryInterval(0)}
	cli, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return cli, fk
}

func TestNewEmptyBase(t *testing.T) {
	_, err := New(WithAPIBase(" "))
	assert.Error(t, err)
}

func TestGetRepoHeaders(t *testing.T) {
	ctx := context.Background()
	cli, fk := newTestClient(t, WithToken("ghp_x"))
	repo, err := cli.GetRepo(ctx, "o", "r")
	require.NoError(t, err)
	assert.Equal(t, "o/r", repo.FullName)
	assert.Equal(t, "", repo.Description)
	assert.Equal(t, int64(12), repo.StargazersCount)
	assert.Equal(t, "o", repo.Owner.Login)
	assert.Equal(t, acceptHeader, fk.lastReq.Header.Get("Accept"))
	assert.Equal(t, defaultUserAgent, fk.lastReq.Header.Get("User-Agent"))
	assert.Equal(t, "token ghp_x", fk.lastReq.Header.Get("Authorization"))
}

func TestNoTokenNoAuthHeader(t *testing.T) {
	cli, fk := newTestClient(t)
	_, err := cli.GetUser(context.Background(), "o")
	require.NoError(t, err)
	assert.Empty(t, fk.lastReq.Header.Get("Authorization"))
}

func TestGetReleases(t *testing.T) {
	ctx := context.Background()
	cli, fk := newTestClient(t)
	rs, err := cli.GetReleases(ctx, "o", "r", 0)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "30", fk.lastReq.URL.Query().Get("per_page"))
	assert.Equal(t, "v1.1.0", rs[0].DisplayName())
	assert.Equal(t, "First", rs[1].DisplayName())
	assert.True(t, rs[1].Prerelease)
	require.Len(t, rs[0].Assets, 1)
	assert.Equal(t, int64(2048), rs[0].Assets[0].Size)

	_, err = cli.GetReleases(ctx, "o", "r", 5)
	require.NoError(t, err)
	assert.Equal(t, "5", fk.lastReq.URL.Query().Get("per_page"))
}

func TestGetUserRepos(t *testing.T) {
	ctx := context.Background()
	cli, fk := newTestClient(t, WithPerPage(50))
	rs, err := cli.GetUserRepos(ctx, "o", 0)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "updated", fk.lastReq.URL.Query().Get("sort"))
	assert.Equal(t, "50", fk.lastReq.URL.Query().Get("per_page"))
}

func TestAPIErrors(t *testing.T) {
	ctx := context.Background()
	cli, _ := newTestClient(t)
	tests := []struct {
		name string
		call func() error
		code int
		msg  string
	}{
		{"repo missing", func() error { _, err := cli.GetRepo(ctx, "o", "none"); return err }, 404, "HTTP 404: " + msgRepoNotFound},
		{"releases missing", func() error { _, err := cli.GetReleases(ctx, "o", "none", 0); return err }, 404, "HTTP 404: " + msgRepoNotFound},
		{"user missing", func() error { _, err := cli.GetUser(ctx, "none"); return err }, 404, "HTTP 404: " + msgUserNotFound},
		{"user repos missing", func() error { _, err := cli.GetUserRepos(ctx, "none", 0); return err }, 404, "HTTP 404: " + msgUserNotFound},
		{"rate limited", func() error { _, err := cli.GetRepo(ctx, "limited", "r"); return err }, 403, "HTTP 403: " + msgRateLimited},
		{"other", func() error { _, err := cli.GetRepo(ctx, "broken", "r"); return err }, 502, "HTTP 502: Bad Gateway"},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			err := tst.call()
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tst.code, apiErr.Code)
			assert.Equal(t, tst.msg, err.Error())
		})
	}
}

func TestResponseCache(t *testing.T) {
	tests := []struct {
		kind string
		ttl  time.Duration
	}{
		{CacheKindLru, time.Minute},
		{CacheKindLru, 0},
		{CacheKindRistretto, time.Minute},
	}
	for _, tst := range tests {
		kind, ttl := tst.kind, tst.ttl
		t.Run(fmt.Sprintf("%s_%s", kind, ttl), func(t *testing.T) {
			ctx := context.Background()
			cc, err := NewCache(kind, 16, ttl)
			require.NoError(t, err)
			cli, fk := newTestClient(t, WithCache(cc))
			for i := 0; i < 3; i++ {
				_, err := cli.GetRepo(ctx, "o", "r")
				require.NoError(t, err)
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(&fk.hits))
			// errors are not cached
			for i := 0; i < 2; i++ {
				_, err := cli.GetRepo(ctx, "o", "none")
				assert.Error(t, err)
			}
			assert.Equal(t, int32(3), atomic.LoadInt32(&fk.hits))
		})
	}
}

func TestNewCacheKind(t *testing.T) {
	cc, err := NewCache(CacheKindNone, 0, 0)
	assert.NoError(t, err)
	assert.Nil(t, cc)
	_, err = NewCache("memcache", 1, 0)
	assert.Error(t, err)

	// lru without ttl keeps the newest items only
	cc, err = NewCache(CacheKindLru, 2, 0)
	require.NoError(t, err)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, cc.Set(ctx, k, []byte(k)))
	}
	_, err = cc.Get(ctx, "a")
	assert.ErrorIs(t, err, cacheapi.ErrCacheKeyNotExist)
	v, err := cc.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), v)
}

func TestTransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	link := srv.URL
	srv.Close()
	cli, err := New(WithAPIBase(link), WithRetryInterval(time.Millisecond))
	require.NoError(t, err)
	_, err = cli.GetRepo(context.Background(), "o", "r")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDownloadAsset(t *testing.T) {
	ctx := context.Background()
	cli, fk := newTestClient(t, WithToken("ghp_x"))
	srvURL := fk.url
	dst := filepath.Join(t.TempDir(), "sub", "app.tar.gz")
	n, err := cli.DownloadAsset(ctx, srvURL+"/download/app.tar.gz", dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len("binary-content")), n)
	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "binary-content", string(raw))
	assert.Empty(t, fk.lastReq.Header.Get("Authorization"))

	_, err = cli.DownloadAsset(ctx, srvURL+"/download/missing", dst+".2")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
	_, statErr := os.Stat(dst + ".2")
	assert.True(t, os.IsNotExist(statErr))
}
