// Package mongostore implements store.Store on MongoDB. Reads are
// aggregation pipelines (match, join, project, facet) built from the
// allow-list; uniqueness is enforced with unique indexes.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/apperr"
	"vidtube/logger"
	"vidtube/query"
	"vidtube/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time

	projVideoSummary bson.D
	projVideoDetail  bson.D
	projCommentFeed  bson.D
	projTweetFeed    bson.D
	projUserSummary  bson.D
}

// Connect dials uri, verifies the connection and ensures indexes on dbName.
func Connect(ctx context.Context, uri, dbName string, al query.Allowlist) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "mongo ping")
	}
	s, err := New(client, dbName, al)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.L().WithField("database", dbName).Info("connected to mongodb")
	return s, nil
}

// New wraps an existing client. It does not touch the server.
func New(client *mongo.Client, dbName string, al query.Allowlist) (*Store, error) {
	s := &Store{client: client, now: time.Now}
	if client != nil {
		s.db = client.Database(dbName)
	}
	var err error
	if s.projVideoSummary, err = projectStage(al, query.ProjVideoSummary); err != nil {
		return nil, err
	}
	if s.projVideoDetail, err = projectStage(al, query.ProjVideoDetail); err != nil {
		return nil, err
	}
	if s.projCommentFeed, err = projectStage(al, query.ProjCommentFeed); err != nil {
		return nil, err
	}
	if s.projTweetFeed, err = projectStage(al, query.ProjTweetFeed); err != nil {
		return nil, err
	}
	if s.projUserSummary, err = projectStage(al, query.ProjUserSummary); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) stamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }

// EnsureIndexes creates the uniqueness constraints and listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "userName", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		colVideos: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colComments: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colLikes: {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "channel", Value: 1}}},
		},
		colTweets: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colPlaylists: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

// parseID converts a hex id. A malformed id cannot name an existing entity,
// so it is reported as NotFound for what.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(what + " not found")
	}
	return oid, nil
}

// optionalID converts a viewer id; empty or malformed yields the zero id.
func optionalID(id string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

func newID(id *string) primitive.ObjectID {
	if *id != "" {
		if oid, err := primitive.ObjectIDFromHex(*id); err == nil {
			return oid
		}
	}
	oid := primitive.NewObjectID()
	*id = oid.Hex()
	return oid
}

// convertErr maps driver errors onto the apperr taxonomy.
func convertErr(err error, what, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(what + " not found")
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict(what+" already exists", err)
	}
	return errors.Wrap(err, op)
}

// facet is the result shape of paginate.
type facet[T any] struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Items []T `bson:"items"`
}

func (f facet[T]) total() int64 {
	if len(f.Metadata) == 0 {
		return 0
	}
	return f.Metadata[0].Total
}

func aggregateAll[T any](ctx context.Context, c *mongo.Collection, p mongo.Pipeline) ([]T, error) {
	cur, err := c.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregatePage[T any](ctx context.Context, c *mongo.Collection, p mongo.Pipeline) ([]T, int64, error) {
	res, err := aggregateAll[facet[T]](ctx, c, p)
	if err != nil {
		return nil, 0, err
	}
	if len(res) == 0 {
		return []T{}, 0, nil
	}
	items := res[0].Items
	if items == nil {
		items = []T{}
	}
	return items, res[0].total(), nil
}
