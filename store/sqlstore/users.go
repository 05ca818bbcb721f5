package sqlstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"vidtube/apperr"
	"vidtube/db"
	"vidtube/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	if u.ID == "" {
		u.ID = newID()
	}
	now, nowStr := s.stamp()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FullName, u.Avatar, u.CoverImage, passwordHash, nowStr, nowStr)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("User with email or username already exists", err)
	}
	return errors.Wrap(err, "insert user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, full_name, avatar, cover_image, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage, ts(&u.CreatedAt), ts(&u.UpdatedAt))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}

func (s *Store) GetCredentials(ctx context.Context, login string) (string, string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ? OR email = ?`, login, login,
	).Scan(&id, &hash)
	if db.IsNoRows(err) {
		return "", "", apperr.NotFound("User not found")
	}
	if err != nil {
		return "", "", errors.Wrap(err, "get credentials")
	}
	return id, hash, nil
}
