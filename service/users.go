package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"vidtube/apperr"
	"vidtube/auth"
	"vidtube/media"
	"vidtube/models"
)

type RegisterInput struct {
	Username string `json:"userName" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	// Optional images; Register takes ownership of the spooled files.
	Avatar     *media.LocalFile `json:"-"`
	CoverImage *media.LocalFile `json:"-"`
}

type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// Register creates an account. Uploaded images are deleted again if the
// account cannot be created.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := check(in, "All fields are required and must be valid"); err != nil {
		media.Discard(in.Avatar, in.CoverImage)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		media.Discard(in.Avatar, in.CoverImage)
		return nil, apperr.Internal("failed to hash password", err)
	}

	u := &models.User{Username: in.Username, Email: in.Email, FullName: in.FullName}
	var uploaded []*uploadedAsset
	for _, img := range []struct {
		file *media.LocalFile
		dst  *string
	}{{in.Avatar, &u.Avatar}, {in.CoverImage, &u.CoverImage}} {
		if img.file == nil {
			continue
		}
		asset, err := s.media.Upload(ctx, *img.file, media.KindImage)
		if err != nil {
			s.discardUploaded(ctx, uploaded)
			media.Discard(in.Avatar, in.CoverImage)
			return nil, err
		}
		uploaded = append(uploaded, &uploadedAsset{handle: asset.DeleteHandle, kind: media.KindImage})
		*img.dst = asset.URL
	}

	if err := s.store.CreateUser(ctx, u, string(hash)); err != nil {
		s.discardUploaded(ctx, uploaded)
		return nil, err
	}
	return u, nil
}

// Login checks credentials by username or email and issues a token. Unknown
// accounts and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Login = strings.TrimSpace(in.Login)
	if err := check(in, "Username or email and password are required"); err != nil {
		return nil, err
	}
	invalid := apperr.Unauthorized("Invalid user credentials")
	if len(in.Password) > auth.MaxPasswordLen {
		return nil, invalid
	}

	id, hash, err := s.store.GetCredentials(ctx, in.Login)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)); err != nil {
		return nil, invalid
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	tok, exp, err := s.issuer.Issue(id)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: tok, ExpiresAt: exp}, nil
}

// CurrentUser returns the caller's account.
func (s *Service) CurrentUser(ctx context.Context, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	return s.store.GetUser(ctx, callerID)
}

type uploadedAsset struct {
	handle string
	kind   media.Kind
}

func (s *Service) discardUploaded(ctx context.Context, assets []*uploadedAsset) {
	for _, a := range assets {
		s.discardAsset(ctx, a.handle, a.kind)
	}
}
