package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"vidtube/apperr"
	"vidtube/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	now := s.stamp()
	u.CreatedAt, u.UpdatedAt = now, now
	doc := userDoc{
		ID: newID(&u.ID), Username: u.Username, Email: u.Email, FullName: u.FullName, Avatar: u.Avatar,
		CoverImage: u.CoverImage, Password: passwordHash, CreatedAt: now, UpdatedAt: now,
	}
	_, err := s.col(colUsers).InsertOne(ctx, doc)
	if err != nil {
		return convertErr(err, "User with email or username", "insert user")
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "User")
	if err != nil {
		return nil, err
	}
	var d userDoc
	if err := s.col(colUsers).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, convertErr(err, "User", "get user")
	}
	return &models.User{
		ID: d.ID.Hex(), Username: d.Username, Email: d.Email, FullName: d.FullName, Avatar: d.Avatar,
		CoverImage: d.CoverImage, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (s *Store) GetCredentials(ctx context.Context, login string) (string, string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return "", "", apperr.NotFound("User not found")
	}
	var d userDoc
	err := s.col(colUsers).FindOne(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "userName", Value: login}},
		bson.D{{Key: "email", Value: login}},
	}}}).Decode(&d)
	if err != nil {
		return "", "", convertErr(err, "User", "get credentials")
	}
	return d.ID.Hex(), d.Password, nil
}
