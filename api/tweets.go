package api

import (
	"net/http"

	"vidtube/httputil"
	"vidtube/service"
)

func (h *Handler) HandleCreateTweet(w http.ResponseWriter, r *http.Request) {
	var in service.TweetInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := h.Svc.CreateTweet(r.Context(), caller(r), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.created(w, t, "Tweet created successfully")
}

func (h *Handler) HandleUserTweets(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.UserTweets(r.Context(), caller(r), param(r, "userId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, list, "Tweets fetched successfully")
}

func (h *Handler) HandleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	var in service.TweetInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := h.Svc.UpdateTweet(r.Context(), caller(r), param(r, "tweetId"), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, t, "Tweet updated successfully")
}

func (h *Handler) HandleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteTweet(r.Context(), caller(r), param(r, "tweetId")); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, struct{}{}, "Tweet deleted successfully")
}
