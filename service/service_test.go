package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vidtube/apperr"
	"vidtube/auth"
	"vidtube/db"
	"vidtube/jobs"
	"vidtube/media"
	"vidtube/models"
	"vidtube/query"
	"vidtube/store"
	"vidtube/store/sqlstore"
)

// fakeGateway records uploads and deletes and fails on demand.
type fakeGateway struct {
	mu         sync.Mutex
	n          int
	duration   float64
	uploaded   []string
	deleted    []string
	failUpload map[media.Kind]bool
	failDelete map[media.Kind]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{duration: 42, failUpload: map[media.Kind]bool{}, failDelete: map[media.Kind]bool{}}
}

func (g *fakeGateway) Upload(_ context.Context, f media.LocalFile, kind media.Kind) (*media.Asset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failUpload[kind] {
		return nil, apperr.Upload(fmt.Sprintf("failed to upload %s", kind), fmt.Errorf("cdn unavailable"))
	}
	g.n++
	handle := fmt.Sprintf("%s/%d%s", kind, g.n, filepath.Ext(f.Filename))
	g.uploaded = append(g.uploaded, handle)
	a := &media.Asset{URL: "https://cdn.example/" + handle, DeleteHandle: handle}
	if kind == media.KindVideo {
		a.Duration = g.duration
	}
	return a, nil
}

func (g *fakeGateway) Delete(_ context.Context, handle string, kind media.Kind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failDelete[kind] {
		return apperr.Delete(fmt.Sprintf("failed to delete %s", kind), fmt.Errorf("cdn unavailable"))
	}
	g.deleted = append(g.deleted, handle)
	return nil
}

func (g *fakeGateway) deletedHandles() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deleted...)
}

type fixture struct {
	svc   *Service
	store *sqlstore.Store
	gw    *fakeGateway
	queue *jobs.MemoryQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), d))

	st, err := sqlstore.New(d, query.Default)
	require.NoError(t, err)
	var tick int64
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.SetClock(func() time.Time { return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second) })

	f := &fixture{store: st, gw: newFakeGateway(), queue: jobs.NewMemoryQueue(16)}
	f.svc = New(st, f.gw, f.queue, auth.NewIssuer("test-secret", time.Hour), query.Default)
	return f
}

// withStore rebuilds the service over a wrapped store.
func (f *fixture) withStore(st store.Store) *Service {
	return New(st, f.gw, f.queue, auth.NewIssuer("test-secret", time.Hour), query.Default)
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", FullName: name}
	require.NoError(t, f.store.CreateUser(context.Background(), u, "x"))
	return u.ID
}

func (f *fixture) video(t *testing.T, owner, title string, duration float64, published bool) *models.Video {
	t.Helper()
	v := &models.Video{
		Owner: owner, Title: title, Description: "about " + title, Duration: duration, IsPublished: published,
		VideoFile: "https://cdn.example/video/" + title, Thumbnail: "https://cdn.example/image/" + title,
		Storage: models.StorageRefs{Video: "video/" + title, Thumbnail: "image/" + title},
	}
	require.NoError(t, f.store.CreateVideo(context.Background(), v))
	return v
}

func localFile(name string) *media.LocalFile {
	return &media.LocalFile{Path: filepath.Join("/nonexistent", name), Filename: name}
}
