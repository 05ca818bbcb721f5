package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
)

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRespond(t *testing.T) {
	rec := httptest.NewRecorder()
	Respond(rec, http.StatusCreated, map[string]string{"_id": "v1"}, "Video published successfully")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(201), body["statusCode"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Video published successfully", body["message"])
	assert.Equal(t, "v1", body["data"].(map[string]any)["_id"])
}

func TestWriteError_Kinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperr.Validation("Sort type must be one of asc, desc"), 400, "VAL_001", "Sort type must be one of asc, desc"},
		{apperr.Forbidden("You are not authorized to update this video"), 403, "AUTH_003", "You are not authorized to update this video"},
		{apperr.NotFound("Video not found"), 404, "DB_404", "Video not found"},
		{apperr.Internal("query failed", errors.New("disk I/O error")), 500, "SYS_001", "Internal server error"},
		{errors.New("raw driver error"), 500, "SYS_001", "Internal server error"},
		{apperr.Upload("failed to upload video", errors.New("timeout")), 502, "MEDIA_001", "failed to upload video"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		body := decodeBody[ErrorBody](t, rec)
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.msg, body.Error)
		assert.False(t, body.Success)
		assert.NotContains(t, rec.Body.String(), "disk I/O")
	}
}

func TestWriteError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		apperr.ValidationDetails(map[string]string{"name": "min"}, "invalid input"))
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"name": "min"}, body["details"])
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Title string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Title":"a"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "a", v.Title)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &v), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &v))

	big := `{"Title":"` + strings.Repeat("x", int(DefaultBodyLimit)) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	err := DecodeJSON(httptest.NewRecorder(), r, &v)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "too large")
}

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "hello"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/videos", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestSaveFormFile(t *testing.T) {
	r := multipartRequest(t, "videoFile", "clip.mp4", "frames")
	require.NoError(t, ParseMultipart(httptest.NewRecorder(), r, 1<<20))
	assert.Equal(t, "hello", r.FormValue("title"))

	dir := t.TempDir()
	f, err := SaveFormFile(r, "videoFile", dir)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "clip.mp4", f.Filename)
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	missing, err := SaveFormFile(r, "thumbnail", dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	RemoveFiles(f, missing)
	_, statErr := os.Stat(f.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseMultipart_TooLarge(t *testing.T) {
	r := multipartRequest(t, "videoFile", "clip.mp4", strings.Repeat("x", 4096))
	err := ParseMultipart(httptest.NewRecorder(), r, 1024)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
