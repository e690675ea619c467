package backup

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/ghrelease/davclient"
	"github.com/xxxsen/ghrelease/entity"
	"golang.org/x/net/webdav"
)

func newRemote(t *testing.T) davclient.IClient {
	h := &webdav.Handler{
		Prefix:     "/dav",
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cli, err := davclient.New(
		davclient.WithBaseURL(srv.URL+"/dav"),
		davclient.WithAuth("u", "p"),
		davclient.WithRemotePath("/ghrel/backups"),
	)
	require.NoError(t, err)
	return cli
}

type failRemote struct {
	davclient.IClient
}

func (f *failRemote) ListFiles(ctx context.Context) ([]*davclient.BackupFile, error) {
	return nil, &davclient.StatusError{Method: http.MethodGet, Code: http.StatusForbidden}
}

func (f *failRemote) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	return nil, davclient.ErrFileNotFound
}

func TestRemoteWithoutClient(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.store.PushRemote(ctx)
	assert.ErrorIs(t, err, ErrNoRemote)
	_, err = env.store.ListRemote(ctx)
	assert.ErrorIs(t, err, ErrNoRemote)
	assert.ErrorIs(t, env.store.RestoreRemote(ctx, "backup-x.json"), ErrNoRemote)
}

func TestRemoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, WithRemote(newRemote(t)))
	env.seed(t)

	first, err := env.store.PushRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup-2024-03-01T08-01-00-000Z.json", first)
	require.NoError(t, env.presets.Clear(ctx))
	second, err := env.store.PushRemote(ctx)
	require.NoError(t, err)

	fs, err := env.store.ListRemote(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, second, fs[0].Name)
	assert.Equal(t, first, fs[1].Name)
	assert.True(t, fs[0].Size > 0)

	data, err := env.store.FetchRemote(ctx, first)
	require.NoError(t, err)
	assert.Len(t, data.Presets, 2)

	require.NoError(t, env.store.RestoreRemote(ctx, first))
	ps, err := env.presets.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	st, err := env.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.ThemePink, st.Theme)

	rec, err := env.store.PullRemote(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, second, rec.Metadata.Name)
	assert.Equal(t, 0, rec.Metadata.PresetsCount)
	again, err := env.store.PullRemote(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
}

func TestRemotePushSameSecond(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 8, 0, 0, 300*int(time.Millisecond), time.UTC)
	env := newTestEnv(t, WithRemote(newRemote(t)), WithClock(func() time.Time {
		clock = clock.Add(200 * time.Millisecond)
		return clock
	}))
	env.seed(t)

	first, err := env.store.PushRemote(ctx)
	require.NoError(t, err)
	second, err := env.store.PushRemote(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	fs, err := env.store.ListRemote(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, second, fs[0].Name)
	assert.Equal(t, first, fs[1].Name)
}

func TestRemoteRejectsForeignJSON(t *testing.T) {
	ctx := context.Background()
	cli := newRemote(t)
	env := newTestEnv(t, WithRemote(cli))
	env.seed(t)
	name, err := env.store.PushRemote(ctx)
	require.NoError(t, err)
	raw, err := cli.DownloadFile(ctx, name)
	require.NoError(t, err)

	geo := append([]byte(`{"type":"FeatureCollection",`), bytes.TrimPrefix(bytes.TrimSpace(raw), []byte("{"))...)
	require.NoError(t, cli.UploadFile(ctx, geo, "backup-geo.json"))
	_, err = env.store.FetchRemote(ctx, "backup-geo.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = env.store.PullRemote(ctx, "backup-geo.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = env.store.FetchRemote(ctx, name)
	assert.NoError(t, err)
}

func TestRemoteErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, WithRemote(&failRemote{}))
	_, err := env.store.ListRemote(ctx)
	var se *davclient.StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	_, err = env.store.FetchRemote(ctx, "backup-2024-03-01T08-01-00.json")
	assert.ErrorIs(t, err, davclient.ErrFileNotFound)
	_, err = env.store.PullRemote(ctx, "backup-2024-03-01T08-01-00.json")
	assert.ErrorIs(t, err, davclient.ErrFileNotFound)
}
