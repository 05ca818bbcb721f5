package api

import (
	"net/http"

	"vidtube/httputil"
	"vidtube/service"
)

func (h *Handler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var in service.PlaylistInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	p, err := h.Svc.CreatePlaylist(r.Context(), caller(r), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.created(w, p, "Playlist created successfully")
}

func (h *Handler) HandleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.UserPlaylists(r.Context(), param(r, "userId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, list, "Playlists fetched successfully")
}

func (h *Handler) HandleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetPlaylist(r.Context(), param(r, "playlistId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, p, "Playlist fetched successfully")
}

func (h *Handler) HandleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var in service.PlaylistInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	p, err := h.Svc.UpdatePlaylist(r.Context(), caller(r), param(r, "playlistId"), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, p, "Playlist updated successfully")
}

func (h *Handler) HandleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeletePlaylist(r.Context(), caller(r), param(r, "playlistId")); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, struct{}{}, "Playlist deleted successfully")
}

func (h *Handler) HandleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.AddVideoToPlaylist(r.Context(), caller(r), param(r, "playlistId"), param(r, "videoId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, p, "Video added to playlist successfully")
}

func (h *Handler) HandleRemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.RemoveVideoFromPlaylist(r.Context(), caller(r), param(r, "playlistId"), param(r, "videoId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, p, "Video removed from playlist successfully")
}
