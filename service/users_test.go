package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/apperr"
	"vidtube/media"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, RegisterInput{
		Username: " Alice ", Email: "Alice@Example.com", FullName: "Alice A", Password: "correct horse",
		Avatar: localFile("me.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "https://cdn.example/image/1.png", u.Avatar)
	assert.Empty(t, u.CoverImage)

	for _, login := range []string{"alice", "alice@example.com"} {
		sess, err := f.svc.Login(ctx, LoginInput{Login: login, Password: "correct horse"})
		require.NoError(t, err, login)
		assert.Equal(t, u.ID, sess.User.ID)
		assert.NotEmpty(t, sess.AccessToken)

		id, err := f.svc.issuer.Resolve(sess.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID, id)
	}

	me, err := f.svc.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	_, err = f.svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", FullName: "A", Password: "password1"})
	require.NoError(t, err)

	cases := []LoginInput{
		{Login: "alice", Password: "wrong-password"},
		{Login: "nobody", Password: "password1"},
		{Login: "alice", Password: strings.Repeat("p", 100)},
	}
	for _, in := range cases {
		_, err := f.svc.Login(ctx, in)
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Equal(t, "Invalid user credentials", err.Error())
	}

	_, err = f.svc.Login(ctx, LoginInput{Login: "alice"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Username: "a!", Email: "nope", FullName: "", Password: "short"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	details, ok := ae.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "userName")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "fullName")
	assert.Equal(t, "min=8", details["password"])
}

func TestRegister_DuplicateRemovesUploadedImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", FullName: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{
		Username: "ALICE", Email: "other@example.com", FullName: "A", Password: "password1",
		Avatar: localFile("a.png"), CoverImage: localFile("c.jpg"),
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.ElementsMatch(t, []string{"image/1.png", "image/2.jpg"}, f.gw.deletedHandles())
}

func TestRegister_UploadFailureCreatesNoAccount(t *testing.T) {
	f := newFixture(t)
	f.gw.failUpload[media.KindImage] = true

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@example.com", FullName: "A", Password: "password1", Avatar: localFile("a.png"),
	})
	require.ErrorIs(t, err, apperr.ErrUpload)
	assert.Empty(t, f.gw.deletedHandles())

	_, err = f.svc.Login(context.Background(), LoginInput{Login: "alice", Password: "password1"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "no account was created")
}
