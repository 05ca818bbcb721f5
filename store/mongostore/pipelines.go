package mongostore

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vidtube/models"
	"vidtube/query"
)

var sortFields = map[query.SortField]string{
	query.SortCreatedAt: "createdAt",
	query.SortDuration:  "duration",
}

// computedFields are projected fields that are expressions over joined
// arrays rather than stored paths.
var computedFields = map[string]any{
	"liked":     bson.D{{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$viewerLikes"}}, 0}}},
	"likeCount": bson.D{{Key: "$size", Value: "$allLikes"}},
}

// projectStage renders an allow-listed projection. Paths are included as-is;
// computed fields get their expression.
func projectStage(al query.Allowlist, name string) (bson.D, error) {
	fields := al.Projection(name)
	if len(fields) == 0 {
		return nil, fmt.Errorf("mongostore: projection %q is empty", name)
	}
	proj := bson.D{}
	hasID := false
	for _, f := range fields {
		if f == "_id" {
			hasID = true
		}
		if expr, ok := computedFields[f]; ok {
			proj = append(proj, bson.E{Key: f, Value: expr})
			continue
		}
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	if !hasID {
		proj = append(proj, bson.E{Key: "_id", Value: 0})
	}
	return bson.D{{Key: "$project", Value: proj}}, nil
}

func lookupOwner() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colUsers},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
	}
}

// lookupLikes joins the likes on the current document as field as. With a
// non-zero viewer only that viewer's like is joined.
func lookupLikes(kind models.TargetKind, viewer primitive.ObjectID, as string) bson.D {
	conds := bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$targetId", "$$targetId"}}},
		bson.D{{Key: "$eq", Value: bson.A{"$targetType", string(kind)}}},
	}
	if !viewer.IsZero() {
		conds = append(conds, bson.D{{Key: "$eq", Value: bson.A{"$likedBy", viewer}}})
	}
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: colLikes},
		{Key: "let", Value: bson.D{{Key: "targetId", Value: "$_id"}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: conds}}}}}},
			bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
		}},
		{Key: "as", Value: as},
	}}}
}

// viewerLikes joins the viewer's like, or an empty array for an anonymous
// viewer.
func viewerLikes(kind models.TargetKind, viewer primitive.ObjectID) bson.D {
	if viewer.IsZero() {
		return bson.D{{Key: "$addFields", Value: bson.D{{Key: "viewerLikes", Value: bson.A{}}}}}
	}
	return lookupLikes(kind, viewer, "viewerLikes")
}

func paginate(page, limit int64, tail ...bson.D) bson.D {
	items := bson.A{
		bson.D{{Key: "$skip", Value: models.Skip(page, limit)}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	for _, st := range tail {
		items = append(items, st)
	}
	return bson.D{{Key: "$facet", Value: bson.D{
		{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
		{Key: "items", Value: items},
	}}}
}

// textMatch is a case-insensitive substring match on title or description.
// The text is quoted so it never acts as a pattern.
func textMatch(text string) bson.D {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: re}},
		bson.D{{Key: "description", Value: re}},
	}}}
}

func videoMatch(f query.VideoFilter) (bson.D, bool) {
	m := bson.D{}
	if f.PublishedOnly {
		m = append(m, bson.E{Key: "isPublished", Value: true})
	}
	if f.OwnerID != "" {
		owner, err := primitive.ObjectIDFromHex(f.OwnerID)
		if err != nil {
			return nil, false
		}
		m = append(m, bson.E{Key: "owner", Value: owner})
	}
	if f.Text != "" {
		m = append(m, textMatch(f.Text)...)
	}
	return m, true
}

// videoListPipeline is match → sort → facet(count, page), with the owner
// joined only for the documents on the page. The second result is false when
// the filter can match nothing.
func videoListPipeline(spec query.VideoListSpec, project bson.D) (mongo.Pipeline, bool, error) {
	match, ok := videoMatch(spec.Filter)
	if !ok {
		return nil, false, nil
	}
	field, known := sortFields[spec.Sort.Field]
	if !known {
		return nil, false, fmt.Errorf("mongostore: unsortable field %q", spec.Sort.Field)
	}
	dir := int(spec.Sort.Dir)
	owner := lookupOwner()
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}}},
		paginate(spec.Page, spec.Limit, owner[0], owner[1], project),
	}, true, nil
}

// commentFeedPipeline pages first, then joins video, owner and the viewer's
// like for the page only, matching the comment feed projection.
func commentFeedPipeline(videoID, viewer primitive.ObjectID, pg query.Pagination, project bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "video", Value: videoID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		paginate(pg.Page, pg.Limit,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: colVideos},
				{Key: "localField", Value: "video"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "video"},
			}}},
			bson.D{{Key: "$unwind", Value: "$video"}},
			lookupOwner()[0],
			lookupOwner()[1],
			viewerLikes(models.TargetComment, viewer),
			project,
		),
	}
}

func tweetFeedPipeline(owner, viewer primitive.ObjectID, project bson.D) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	p = append(p, lookupOwner()...)
	return append(p,
		lookupLikes(models.TargetTweet, primitive.NilObjectID, "allLikes"),
		viewerLikes(models.TargetTweet, viewer),
		project,
	)
}

func videoDetailPipeline(id primitive.ObjectID, project bson.D) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}
	p = append(p, lookupOwner()...)
	return append(p, project)
}

// likedVideosPipeline starts from the user's video likes, newest first, and
// replaces each with the liked video. Unpublished videos of other owners are
// dropped.
func likedVideosPipeline(user primitive.ObjectID, project bson.D) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "likedBy", Value: user}, {Key: "targetType", Value: string(models.TargetVideo)}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colVideos},
			{Key: "localField", Value: "targetId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$video"}}}},
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "isPublished", Value: true}},
			bson.D{{Key: "owner", Value: user}},
		}}}}},
	}
	p = append(p, lookupOwner()...)
	return append(p, project)
}

func playlistVideosPipeline(ids []primitive.ObjectID, project bson.D) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}}}}
	p = append(p, lookupOwner()...)
	return append(p, project)
}
