package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_CachesByName(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))
	assert.Same(t, GetLogger("app"), L())
	assert.NotSame(t, L(), Access())
}

func TestInit_FileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.Path = dir
	cfg.Format = "json"
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Init(nil) })

	GetLogger("unit").Info("hello")

	data, err := os.ReadFile(filepath.Join(dir, "unit.log"))
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "hello", line["message"])
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Init(nil) })
	assert.Equal(t, logrus.InfoLevel, GetLogger("x").GetLevel())
}

func TestMiddleware_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/videos/x", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "/api/v1/videos/x", entry["path"])
}
