package api

import (
	"net/http"

	"vidtube/httputil"
	"vidtube/models"
)

func (h *Handler) HandleToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.VideoTarget{VideoID: param(r, "videoId")})
}

func (h *Handler) HandleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.CommentTarget{CommentID: param(r, "commentId")})
}

func (h *Handler) HandleToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.TweetTarget{TweetID: param(r, "tweetId")})
}

// toggleLike answers 201 when a like was created and 200 when one was
// removed.
func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	res, err := h.Svc.ToggleLike(r.Context(), caller(r), target)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if res.Liked {
		h.created(w, res, capitalizeKind(target.Kind())+" liked successfully")
		return
	}
	h.ok(w, res, capitalizeKind(target.Kind())+" unliked successfully")
}

func capitalizeKind(k models.TargetKind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func (h *Handler) HandleLikedVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.Svc.LikedVideos(r.Context(), caller(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, videos, "Liked videos fetched successfully")
}
