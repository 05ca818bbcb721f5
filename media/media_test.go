package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
)

type fakeObjects struct {
	put     map[string]string
	putErr  error
	removed []string
	rmErr   error
}

func (f *fakeObjects) FPutObject(_ context.Context, _, object, path string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	if f.put == nil {
		f.put = map[string]string{}
	}
	f.put[object] = opts.ContentType
	return minio.UploadInfo{Key: object}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, _, object string, _ minio.RemoveObjectOptions) error {
	if f.rmErr != nil {
		return f.rmErr
	}
	f.removed = append(f.removed, object)
	return nil
}

type fixedProbe struct {
	d   float64
	err error
}

func (p fixedProbe) Duration(context.Context, string) (float64, error) { return p.d, p.err }

func spool(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return path
}

func testGateway(store *fakeObjects, probe DurationProber) *MinioGateway {
	g := newMinioGateway(store, MinioConfig{Bucket: "media", PublicURL: "/storage/"}, probe)
	g.newKey = func() string { return "k1" }
	return g
}

func TestUpload_Video(t *testing.T) {
	store := &fakeObjects{}
	g := testGateway(store, fixedProbe{d: 12.5})
	path := spool(t, "clip.MP4")

	asset, err := g.Upload(context.Background(), LocalFile{Path: path, Filename: "clip.MP4"}, KindVideo)
	require.NoError(t, err)
	assert.Equal(t, "/storage/media/videos/k1.mp4", asset.URL)
	assert.Equal(t, "videos/k1.mp4", asset.DeleteHandle)
	assert.Equal(t, 12.5, asset.Duration)
	assert.Equal(t, "video/mp4", store.put["videos/k1.mp4"])

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "spooled file is removed after upload")
}

func TestUpload_ImageSkipsProbe(t *testing.T) {
	store := &fakeObjects{}
	g := testGateway(store, fixedProbe{d: 99})

	asset, err := g.Upload(context.Background(), LocalFile{Path: spool(t, "t.png"), Filename: "t.png", ContentType: "image/png"}, KindImage)
	require.NoError(t, err)
	assert.Equal(t, "images/k1.png", asset.DeleteHandle)
	assert.Zero(t, asset.Duration)
}

func TestUpload_ProbeFailureIsNotFatal(t *testing.T) {
	g := testGateway(&fakeObjects{}, fixedProbe{err: errors.New("no ffprobe")})
	asset, err := g.Upload(context.Background(), LocalFile{Path: spool(t, "v.webm"), Filename: "v.webm"}, KindVideo)
	require.NoError(t, err)
	assert.Zero(t, asset.Duration)
}

func TestUpload_StoreFailure(t *testing.T) {
	g := testGateway(&fakeObjects{putErr: errors.New("connection refused")}, nil)
	path := spool(t, "v.mp4")

	_, err := g.Upload(context.Background(), LocalFile{Path: path, Filename: "v.mp4"}, KindVideo)
	assert.ErrorIs(t, err, apperr.ErrUpload)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "spooled file is removed on failure too")
}

func TestUpload_RejectsUnknownKind(t *testing.T) {
	g := testGateway(&fakeObjects{}, nil)
	_, err := g.Upload(context.Background(), LocalFile{Path: spool(t, "x")}, Kind("audio"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDelete(t *testing.T) {
	store := &fakeObjects{}
	g := testGateway(store, nil)

	require.NoError(t, g.Delete(context.Background(), "images/a.png", KindImage))
	require.NoError(t, g.Delete(context.Background(), "", KindImage))
	assert.Equal(t, []string{"images/a.png"}, store.removed)

	store.rmErr = errors.New("denied")
	assert.ErrorIs(t, g.Delete(context.Background(), "videos/b.mp4", KindVideo), apperr.ErrDelete)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/media/videos/a.mp4", PublicURL("https://cdn.example", "media", "videos/a.mp4"))
	assert.Equal(t, "", PublicURL("/storage", "media", ""))
}

func TestObjectKey_DropsOverlongExtension(t *testing.T) {
	assert.Equal(t, "images/id", objectKey(KindImage, "id", "weird.abcdefghijklmno"))
	assert.Equal(t, "videos/id", objectKey(KindVideo, "id", "noext"))
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration(`{"format":{"duration":"63.120000"}}`)
	require.NoError(t, err)
	assert.InDelta(t, 63.12, d, 1e-9)

	d, err = parseProbeDuration(`{"format":{"duration":"N/A"},"streams":[{"codec_type":"audio","duration":"5"},{"codec_type":"video","duration":"4.5"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 4.5, d)

	_, err = parseProbeDuration(`{"format":{}}`)
	assert.Error(t, err)

	_, err = parseProbeDuration(`not json`)
	assert.Error(t, err)
}

func TestFFProbe_UsesContextDeadline(t *testing.T) {
	var got time.Duration
	p := &FFProbe{Timeout: time.Minute, run: func(_ string, timeout time.Duration) (string, error) {
		got = timeout
		return `{"format":{"duration":"1"}}`, nil
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := p.Duration(ctx, "x.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)
	assert.LessOrEqual(t, got, 5*time.Second)
	assert.Greater(t, got, time.Duration(0))
}
