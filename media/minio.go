package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"vidtube/apperr"
	"vidtube/logger"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the prefix under which the bucket is reachable from
	// browsers, e.g. "/storage" behind a reverse proxy.
	PublicURL string
}

// objectStore is the part of *minio.Client the gateway uses.
type objectStore interface {
	FPutObject(ctx context.Context, bucket, object, path string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// MinioGateway stores media as objects in a single bucket, under "videos/"
// and "images/" prefixes. The delete handle is the object key.
type MinioGateway struct {
	client objectStore
	bucket string
	public string
	probe  DurationProber
	newKey func() string
}

// NewMinioGateway connects to MinIO and makes sure the bucket exists. probe
// may be nil, in which case uploaded videos report a zero duration.
func NewMinioGateway(ctx context.Context, cfg MinioConfig, probe DurationProber) (*MinioGateway, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.L().WithField("bucket", cfg.Bucket).Info("created bucket")
	}
	return newMinioGateway(client, cfg, probe), nil
}

func newMinioGateway(client objectStore, cfg MinioConfig, probe DurationProber) *MinioGateway {
	return &MinioGateway{
		client: client,
		bucket: cfg.Bucket,
		public: cfg.PublicURL,
		probe:  probe,
		newKey: func() string { return uuid.New().String() },
	}
}

func (g *MinioGateway) Upload(ctx context.Context, f LocalFile, kind Kind) (*Asset, error) {
	defer removeLocal(f.Path)
	if err := validKind(kind); err != nil {
		return nil, err
	}

	asset := &Asset{}
	if kind == KindVideo && g.probe != nil {
		d, err := g.probe.Duration(ctx, f.Path)
		if err != nil {
			logger.L().WithError(err).WithField("file", f.Filename).Warn("duration probe failed")
		} else {
			asset.Duration = d
		}
	}

	key := objectKey(kind, g.newKey(), f.Filename)
	opts := minio.PutObjectOptions{ContentType: f.ContentType}
	if opts.ContentType == "" && kind == KindVideo {
		opts.ContentType = "video/mp4"
	}
	if _, err := g.client.FPutObject(ctx, g.bucket, key, f.Path, opts); err != nil {
		return nil, apperr.Upload(fmt.Sprintf("failed to upload %s", kind), err)
	}

	asset.URL = PublicURL(g.public, g.bucket, key)
	asset.DeleteHandle = key
	logger.L().WithFields(logrus.Fields{"key": key, "kind": kind}).Debug("media uploaded")
	return asset, nil
}

func (g *MinioGateway) Delete(ctx context.Context, handle string, kind Kind) error {
	if handle == "" {
		return nil
	}
	if err := g.client.RemoveObject(ctx, g.bucket, handle, minio.RemoveObjectOptions{}); err != nil {
		return apperr.Delete(fmt.Sprintf("failed to delete %s", kind), err)
	}
	return nil
}
