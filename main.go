package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"vidtube/api"
	"vidtube/auth"
	"vidtube/config"
	"vidtube/db"
	"vidtube/jobs"
	"vidtube/logger"
	"vidtube/media"
	"vidtube/query"
	"vidtube/ratelimit"
	"vidtube/service"
	"vidtube/store"
	"vidtube/store/mongostore"
	"vidtube/store/sqlstore"
)

func main() {
	if err := run(); err != nil {
		logger.L().WithError(err).Fatal("vidtube exited")
	}
}

func run() error {
	logCfg, err := logger.ConfigFromEnv()
	if err != nil {
		return err
	}
	if err := logger.Init(logCfg); err != nil {
		return err
	}
	log := logger.L()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := query.Default.Validate(); err != nil {
		return errors.Wrap(err, "query allow-list")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	gw, err := media.NewMinioGateway(ctx, media.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccess,
		SecretKey: cfg.MinioSecret,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioSSL,
		PublicURL: cfg.MediaPublicURL,
	}, media.NewFFProbe())
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.QueueDriver == config.QueueRedis {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return errors.Wrap(err, "redis ping")
		}
		defer rdb.Close()
	}

	queue, err := openQueue(cfg, rdb)
	if err != nil {
		return err
	}
	defer queue.Close()

	worker := jobs.NewWorker(queue, st)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, jobs.ErrClosed) {
			log.WithError(err).Error("transcode worker failed")
		}
	}()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL())
	svc := service.New(st, gw, queue, issuer, query.Default)

	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		if rdb != nil {
			limiter = ratelimit.NewRedis(rdb, cfg.RateLimitMax, cfg.RateWindow())
		} else {
			mem := ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateWindow())
			defer mem.Stop()
			limiter = mem
		}
	}

	h := &api.Handler{
		Svc:            svc,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		SecureCookies:  cfg.CookieSecure,
	}
	router := api.NewRouter(h, api.RouterConfig{
		Auth:           &auth.Middleware{Issuer: issuer, Users: st},
		AllowedOrigins: cfg.AllowedOrigins(),
		Limiter:        limiter,
		RateWindow:     cfg.RateWindow(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "db": cfg.DBDriver, "queue": cfg.QueueDriver}).Info("vidtube API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "server")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	stop()
	<-workerDone
	log.Info("server shut down")
	return nil
}

// openStore connects the configured backend and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, query.Default)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres, config.DriverSQLite:
		var (
			d   *db.CompatDB
			err error
		)
		if cfg.DBDriver == config.DriverPostgres {
			d, err = db.OpenPostgres(ctx, cfg.DatabaseURL)
		} else {
			if mkErr := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); mkErr != nil {
				return nil, errors.Wrap(mkErr, "create database dir")
			}
			d, err = db.OpenSQLite(cfg.DBPath)
		}
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, d); err != nil {
			d.Close()
			return nil, err
		}
		st, err := sqlstore.New(d, query.Default)
		if err != nil {
			d.Close()
			return nil, err
		}
		return st, nil
	}
	return nil, errors.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func openQueue(cfg *config.Config, rdb *redis.Client) (jobs.Queue, error) {
	switch cfg.QueueDriver {
	case config.QueueRedis:
		return jobs.NewRedisQueueFromClient(rdb, jobs.TranscodeQueue), nil
	case config.QueueAMQP:
		return jobs.NewAMQPQueue(cfg.AMQPURL)
	default:
		return jobs.NewMemoryQueue(256), nil
	}
}
