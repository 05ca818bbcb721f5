// Package sqlstore implements store.Store on SQLite or PostgreSQL through the
// db compatibility layer. Reads are single statements: owner and viewer
// enrichment are joins, never per-row lookups.
package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
	"vidtube/query"
	"vidtube/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db  *db.CompatDB
	now func() time.Time

	videoSummary *projection[models.VideoSummary]
	videoDetail  *projection[models.VideoDetail]
	commentFeed  *projection[models.CommentView]
	tweetFeed    *projection[models.TweetView]
	userSummary  *projection[models.UserSummary]
}

// New builds a store over d whose read columns are exactly the fields al
// allows. It fails if al names a field this store cannot produce.
func New(d *db.CompatDB, al query.Allowlist) (*Store, error) {
	s := &Store{db: d, now: time.Now}
	var err error
	if s.videoSummary, err = newProjection(al, query.ProjVideoSummary, videoSummaryColumns, bindVideoSummary); err != nil {
		return nil, err
	}
	if s.videoDetail, err = newProjection(al, query.ProjVideoDetail, videoDetailColumns, bindVideoDetail); err != nil {
		return nil, err
	}
	if s.commentFeed, err = newProjection(al, query.ProjCommentFeed, commentFeedColumns, bindCommentView); err != nil {
		return nil, err
	}
	if s.tweetFeed, err = newProjection(al, query.ProjTweetFeed, tweetFeedColumns, bindTweetView); err != nil {
		return nil, err
	}
	if s.userSummary, err = newProjection(al, query.ProjUserSummary, userSummaryColumns, bindUserSummary); err != nil {
		return nil, err
	}
	return s, nil
}

// SetClock replaces the source of created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

func newID() string { return uuid.NewString() }

func (s *Store) stamp() (time.Time, string) {
	t := s.now().UTC()
	return t, db.FormatTime(t)
}

// affected turns a zero-row mutation into a NotFound for what.
func affected(res interface{ RowsAffected() (int64, error) }, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

func removed(res interface{ RowsAffected() (int64, error) }) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

// tsScanner reads a stored timestamp column into a time.Time.
type tsScanner struct{ dst *time.Time }

func ts(dst *time.Time) tsScanner { return tsScanner{dst: dst} }

func (s tsScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dst = time.Time{}
	case time.Time:
		*s.dst = v.UTC()
	case string:
		t, err := db.ParseTime(v)
		if err != nil {
			return err
		}
		*s.dst = t.UTC()
	case []byte:
		t, err := db.ParseTime(string(v))
		if err != nil {
			return err
		}
		*s.dst = t.UTC()
	default:
		return errors.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func countQuery(ctx context.Context, q db.Querier, sql string, args ...any) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, sql, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}
