package httputil

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vidtube/apperr"
	"vidtube/media"
)

// memoryThreshold is how much of a multipart form is held in memory before
// parts spill to temp files.
const memoryThreshold = 8 << 20

// ParseMultipart limits the body to maxBytes and parses the form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	MaxBody(w, r, maxBytes)
	if err := r.ParseMultipartForm(memoryThreshold); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("upload exceeds %d MB", maxBytes>>20)
		}
		return apperr.Validation("invalid multipart form")
	}
	return nil
}

// SaveFormFile copies the named part of a parsed multipart form into dir and
// returns it as a media.LocalFile. A missing part returns (nil, nil). The
// caller owns the file.
func SaveFormFile(r *http.Request, field, dir string) (*media.LocalFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	fh := r.MultipartForm.File[field][0]
	return spool(fh, dir)
}

func spool(fh *multipart.FileHeader, dir string) (*media.LocalFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("unreadable upload %q", fh.Filename)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Internal("failed to prepare upload dir", err)
	}
	path := filepath.Join(dir, uuid.New().String()+filepath.Ext(fh.Filename))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, apperr.Internal("failed to spool upload", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, apperr.Internal("failed to spool upload", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, apperr.Internal("failed to spool upload", err)
	}
	return &media.LocalFile{
		Path:        path,
		Filename:    filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// RemoveFiles deletes spooled files that were never handed to a gateway.
func RemoveFiles(files ...*media.LocalFile) { media.Discard(files...) }
