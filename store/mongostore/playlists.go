package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/apperr"
	"vidtube/models"
)

func (d playlistDoc) model() models.Playlist {
	return models.Playlist{
		ID: d.ID.Hex(), Owner: d.Owner.Hex(), Name: d.Name, Description: d.Description,
		Videos: hexes(d.Videos), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (s *Store) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	owner, err := parseID(p.Owner, "User")
	if err != nil {
		return err
	}
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Videos = []string{}
	_, err = s.col(colPlaylists).InsertOne(ctx, playlistDoc{
		ID: newID(&p.ID), Owner: owner, Name: p.Name, Description: p.Description,
		Videos: []primitive.ObjectID{}, CreatedAt: now, UpdatedAt: now,
	})
	return convertErr(err, "Playlist", "insert playlist")
}

func (s *Store) getPlaylistDoc(ctx context.Context, id string) (*playlistDoc, error) {
	oid, err := parseID(id, "Playlist")
	if err != nil {
		return nil, err
	}
	var d playlistDoc
	if err := s.col(colPlaylists).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, convertErr(err, "Playlist", "get playlist")
	}
	return &d, nil
}

func (s *Store) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	d, err := s.getPlaylistDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	p := d.model()
	return &p, nil
}

// GetPlaylistDetail populates videos in playlist order; members whose video
// no longer exists are skipped.
func (s *Store) GetPlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	d, err := s.getPlaylistDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	var owner ownerRow
	err = s.col(colUsers).FindOne(ctx, bson.D{{Key: "_id", Value: d.Owner}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "userName", Value: 1}, {Key: "avatar", Value: 1}}),
	).Decode(&owner)
	if err != nil {
		return nil, convertErr(err, "User", "playlist owner")
	}

	ids := d.Videos
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	rows, err := aggregateAll[videoRow](ctx, s.col(colVideos), playlistVideosPipeline(ids, s.projVideoSummary))
	if err != nil {
		return nil, errors.Wrap(err, "playlist videos")
	}
	byID := make(map[primitive.ObjectID]models.VideoSummary, len(rows))
	for _, r := range rows {
		byID[r.ID] = r.summary()
	}
	videos := make([]models.VideoSummary, 0, len(ids))
	for _, vid := range ids {
		if v, ok := byID[vid]; ok {
			videos = append(videos, v)
		}
	}
	return &models.PlaylistDetail{
		ID: d.ID.Hex(), Name: d.Name, Description: d.Description, Owner: owner.model(), Videos: videos,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (s *Store) ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	uid, err := parseID(userID, "User")
	if err != nil {
		return nil, err
	}
	cur, err := s.col(colPlaylists).Find(ctx, bson.D{{Key: "owner", Value: uid}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list playlists")
	}
	var docs []playlistDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode playlists")
	}
	out := make([]models.Playlist, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, p *models.Playlist) error {
	oid, err := parseID(p.ID, "Playlist")
	if err != nil {
		return err
	}
	now := s.stamp()
	res, err := s.col(colPlaylists).UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: p.Name}, {Key: "description", Value: p.Description}, {Key: "updatedAt", Value: now},
	}}})
	if err != nil {
		return errors.Wrap(err, "update playlist")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Playlist not found")
	}
	p.UpdatedAt = now
	return nil
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	oid, err := parseID(id, "Playlist")
	if err != nil {
		return err
	}
	res, err := s.col(colPlaylists).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return errors.Wrap(err, "delete playlist")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Playlist not found")
	}
	return nil
}

// AddPlaylistVideo pushes only when the video is not yet a member, in one
// conditional update, so concurrent adds cannot duplicate it.
func (s *Store) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) error {
	pid, err := parseID(playlistID, "Playlist")
	if err != nil {
		return err
	}
	vid, err := parseID(videoID, "Video")
	if err != nil {
		return err
	}
	res, err := s.col(colPlaylists).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: pid}, {Key: "videos", Value: bson.D{{Key: "$ne", Value: vid}}}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "videos", Value: vid}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: s.stamp()}}},
		})
	if err != nil {
		return errors.Wrap(err, "add playlist video")
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.col(colPlaylists).CountDocuments(ctx, bson.D{{Key: "_id", Value: pid}})
	if err != nil {
		return errors.Wrap(err, "add playlist video")
	}
	if n == 0 {
		return apperr.NotFound("Playlist not found")
	}
	return apperr.Conflict("Video already exists in the playlist", nil)
}

func (s *Store) RemovePlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	pid, err := parseID(playlistID, "Playlist")
	if err != nil {
		return false, err
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return false, nil
	}
	res, err := s.col(colPlaylists).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: pid}, {Key: "videos", Value: vid}},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "videos", Value: vid}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: s.stamp()}}},
		})
	if err != nil {
		return false, errors.Wrap(err, "remove playlist video")
	}
	return res.ModifiedCount > 0, nil
}
