package api

import (
	"net/http"

	"vidtube/auth"
	"vidtube/httputil"
	"vidtube/service"
)

// HandleRegister accepts JSON, or a multipart form when avatar or cover
// images are attached.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if isMultipart(r) {
		if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		defer releaseForm(r)
		in.Username, _ = formValue(r, "userName")
		in.Email, _ = formValue(r, "email")
		in.FullName, _ = formValue(r, "fullName")
		in.Password, _ = formValue(r, "password")

		var err error
		if in.Avatar, err = httputil.SaveFormFile(r, "avatar", h.UploadDir); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		if in.CoverImage, err = httputil.SaveFormFile(r, "coverImage", h.UploadDir); err != nil {
			httputil.RemoveFiles(in.Avatar)
			httputil.WriteError(w, r, err)
			return
		}
	} else if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	u, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.created(w, u, "User registered successfully")
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	sess, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    sess.AccessToken,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.ok(w, sess, "User logged in successfully")
}

// HandleLogout clears the login cookie. Tokens are stateless and stay valid
// until they expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.ok(w, struct{}{}, "User logged out")
}

func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.CurrentUser(r.Context(), caller(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.ok(w, u, "Current user fetched successfully")
}
