package api

import (
	"net/http"

	"vidtube/httputil"
)

func (h *Handler) HandleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.ToggleSubscription(r.Context(), caller(r), param(r, "channelId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if res.Subscribed {
		h.created(w, res, "Subscribed successfully")
		return
	}
	h.ok(w, res, "Unsubscribed successfully")
}

func (h *Handler) HandleChannelSubscribers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ChannelSubscribers(r.Context(), param(r, "channelId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, list, "Subscribers fetched successfully")
}

func (h *Handler) HandleSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.SubscribedChannels(r.Context(), param(r, "subscriberId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, list, "Subscribed channels fetched successfully")
}
