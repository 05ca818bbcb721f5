// Package media stores uploaded video and image files and hands back a public
// URL plus the handle needed to delete them again.
package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"vidtube/apperr"
	"vidtube/logger"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is the result of a successful upload. Duration is only set for
// videos, and only when it could be probed.
type Asset struct {
	URL          string
	DeleteHandle string
	Duration     float64
}

// LocalFile is a file the HTTP layer spooled to disk. The gateway owns it
// once Upload is called and removes it whatever the outcome.
type LocalFile struct {
	Path        string
	Filename    string
	ContentType string
}

// Gateway is the media store. Upload fails with apperr.ErrUpload and Delete
// with apperr.ErrDelete.
type Gateway interface {
	Upload(ctx context.Context, f LocalFile, kind Kind) (*Asset, error)
	Delete(ctx context.Context, handle string, kind Kind) error
}

// DurationProber reads the playable length of a local video file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// folder is the object-key prefix for each kind.
func folder(kind Kind) string {
	if kind == KindVideo {
		return "videos"
	}
	return "images"
}

// objectKey builds "<folder>/<id><ext>", keeping the client's extension so
// the store serves a sensible content type.
func objectKey(kind Kind, id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return folder(kind) + "/" + id + ext
}

// PublicURL joins the browser-facing prefix, bucket and key.
func PublicURL(base, bucket, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

func removeLocal(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.L().WithError(err).WithField("path", path).Warn("failed to remove spooled upload")
	}
}

func validKind(kind Kind) error {
	if kind != KindImage && kind != KindVideo {
		return apperr.Validation("unsupported media kind %q", kind)
	}
	return nil
}

// Discard removes spooled files that were never handed to a gateway.
func Discard(files ...*LocalFile) {
	for _, f := range files {
		if f != nil {
			removeLocal(f.Path)
		}
	}
}
