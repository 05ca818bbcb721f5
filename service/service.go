// Package service implements the operations behind the HTTP API. Every
// operation takes the acting user's id as an explicit argument; nothing is
// read from ambient request state.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vidtube/apperr"
	"vidtube/auth"
	"vidtube/jobs"
	"vidtube/logger"
	"vidtube/media"
	"vidtube/models"
	"vidtube/query"
	"vidtube/store"
)

// cleanupTimeout bounds compensating media deletes, which run even after the
// request context is gone.
const cleanupTimeout = 30 * time.Second

type Service struct {
	store  store.Store
	media  media.Gateway
	queue  jobs.Queue
	issuer *auth.Issuer
	al     query.Allowlist
	log    *logrus.Logger

	likeTargets map[models.TargetKind]targetLookup
}

// New wires the service. queue may be nil, in which case published videos
// stay pending.
func New(st store.Store, gw media.Gateway, q jobs.Queue, issuer *auth.Issuer, al query.Allowlist) *Service {
	s := &Service{
		store:  st,
		media:  gw,
		queue:  q,
		issuer: issuer,
		al:     al,
		log:    logger.L(),
	}
	s.likeTargets = s.newTargetLookups()
	return s
}

// requireID trims an identifier path parameter.
func requireID(id, what string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Validation("%s ID is required", what)
	}
	return id, nil
}

// detached returns a context for cleanup work that must outlive ctx.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

// discardAsset deletes an uploaded asset as compensation. Failures are
// logged; the caller reports its original error.
func (s *Service) discardAsset(ctx context.Context, handle string, kind media.Kind) {
	if handle == "" {
		return
	}
	cctx, cancel := detached(ctx)
	defer cancel()
	if err := s.media.Delete(cctx, handle, kind); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"handle": handle, "kind": kind}).Error("failed to clean up media asset")
	}
}
