package api

import (
	"net/http"

	"vidtube/httputil"
	"vidtube/service"
)

func (h *Handler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	page, err := h.Svc.ListPublishedVideos(r.Context(), listParams(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, page, "Videos fetched successfully")
}

func (h *Handler) HandleListOwnVideos(w http.ResponseWriter, r *http.Request) {
	page, err := h.Svc.ListOwnVideos(r.Context(), caller(r), listParams(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, page, "Videos fetched successfully")
}

func (h *Handler) HandleGetVideo(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.GetVideo(r.Context(), caller(r), param(r, "videoId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, v, "Video fetched successfully")
}

// HandlePublishVideo takes a multipart form with videoFile, thumbnail, title
// and description.
func (h *Handler) HandlePublishVideo(w http.ResponseWriter, r *http.Request) {
	if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	defer releaseForm(r)

	var in service.PublishVideoInput
	in.Title, _ = formValue(r, "title")
	in.Description, _ = formValue(r, "description")
	var err error
	if in.VideoFile, err = httputil.SaveFormFile(r, "videoFile", h.UploadDir); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if in.Thumbnail, err = httputil.SaveFormFile(r, "thumbnail", h.UploadDir); err != nil {
		httputil.RemoveFiles(in.VideoFile)
		httputil.WriteError(w, r, err)
		return
	}

	v, err := h.Svc.PublishVideo(r.Context(), caller(r), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.created(w, v, "Video published successfully")
}

// HandleUpdateVideo accepts a JSON body, or a multipart form when a new
// thumbnail is attached. Only fields that are present are changed.
func (h *Handler) HandleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateVideoInput
	if isMultipart(r) {
		if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		defer releaseForm(r)
		if v, ok := formValue(r, "title"); ok {
			in.Title = &v
		}
		if v, ok := formValue(r, "description"); ok {
			in.Description = &v
		}
		var err error
		if in.Thumbnail, err = httputil.SaveFormFile(r, "thumbnail", h.UploadDir); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
	} else if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	v, err := h.Svc.UpdateVideo(r.Context(), caller(r), param(r, "videoId"), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, v, "Video updated successfully")
}

func (h *Handler) HandleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteVideo(r.Context(), caller(r), param(r, "videoId")); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, struct{}{}, "Video deleted successfully")
}

func (h *Handler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.TogglePublish(r.Context(), caller(r), param(r, "videoId"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, v, "Video publish status toggled successfully")
}
