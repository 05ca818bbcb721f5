package api

import (
	"net/http"

	"vidtube/httputil"
	"vidtube/service"
)

func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Svc.ListComments(r.Context(), caller(r), param(r, "videoId"), q.Get("page"), q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, page, "Comments fetched successfully")
}

func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.AddComment(r.Context(), caller(r), param(r, "videoId"), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.created(w, c, "Comment added successfully")
}

func (h *Handler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.UpdateComment(r.Context(), caller(r), param(r, "commentId"), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, c, "Comment updated successfully")
}

func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteComment(r.Context(), caller(r), param(r, "commentId")); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, struct{}{}, "Comment deleted successfully")
}
