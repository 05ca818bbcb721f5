package models

import (
	"fmt"
	"time"
)

// TargetKind is the persisted type tag of a like target.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// TargetKinds lists every variant of LikeTarget. Tables keyed by kind must
// cover all of them.
var TargetKinds = []TargetKind{TargetVideo, TargetComment, TargetTweet}

// LikeTarget is a closed sum over the entities a user can like. Only the
// variants in this file implement it.
type LikeTarget interface {
	Kind() TargetKind
	TargetID() string
	isLikeTarget()
}

type VideoTarget struct{ VideoID string }

type CommentTarget struct{ CommentID string }

type TweetTarget struct{ TweetID string }

func (t VideoTarget) Kind() TargetKind   { return TargetVideo }
func (t VideoTarget) TargetID() string   { return t.VideoID }
func (VideoTarget) isLikeTarget()        {}
func (t CommentTarget) Kind() TargetKind { return TargetComment }
func (t CommentTarget) TargetID() string { return t.CommentID }
func (CommentTarget) isLikeTarget()      {}
func (t TweetTarget) Kind() TargetKind   { return TargetTweet }
func (t TweetTarget) TargetID() string   { return t.TweetID }
func (TweetTarget) isLikeTarget()        {}

// NewLikeTarget rebuilds a target from its persisted tag and id.
func NewLikeTarget(kind TargetKind, id string) (LikeTarget, error) {
	switch kind {
	case TargetVideo:
		return VideoTarget{VideoID: id}, nil
	case TargetComment:
		return CommentTarget{CommentID: id}, nil
	case TargetTweet:
		return TweetTarget{TweetID: id}, nil
	}
	return nil, fmt.Errorf("unknown like target kind %q", kind)
}

// LikeKey identifies the single like a user may hold on a target.
type LikeKey struct {
	UserID string
	Target LikeTarget
}

type Like struct {
	ID        string     `json:"_id"`
	LikedBy   string     `json:"likedBy"`
	Target    LikeTarget `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (l Like) Key() LikeKey { return LikeKey{UserID: l.LikedBy, Target: l.Target} }

// ToggleResult reports the state a like toggle left behind.
type ToggleResult struct {
	Liked bool  `json:"liked"`
	Like  *Like `json:"like,omitempty"`
}
