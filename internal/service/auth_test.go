package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func setupAuthTest(t *testing.T) *service.AuthService {
	db := testhelpers.NewTestDB(t)
	return service.NewAuthService(db, "test-secret")
}

func TestRegister(t *testing.T) {
	authSvc := setupAuthTest(t)

	user, err := authSvc.Register(service.RegisterInput{
		Email:     "vasya@example.com",
		Username:  "vasya",
		FirstName: "Vasya",
		LastName:  "Pupkin",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "vasya", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.False(t, user.IsStaff)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	authSvc := setupAuthTest(t)

	_, err := authSvc.Register(service.RegisterInput{
		Email: "dup@example.com", Username: "first",
		FirstName: "First", LastName: "User", Password: "password123",
	})
	require.NoError(t, err)

	_, err = authSvc.Register(service.RegisterInput{
		Email: "dup@example.com", Username: "second",
		FirstName: "Second", LastName: "User", Password: "password123",
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	authSvc := setupAuthTest(t)

	_, err := authSvc.Register(service.RegisterInput{
		Email: "a@example.com", Username: "taken",
		FirstName: "A", LastName: "A", Password: "password123",
	})
	require.NoError(t, err)

	_, err = authSvc.Register(service.RegisterInput{
		Email: "b@example.com", Username: "taken",
		FirstName: "B", LastName: "B", Password: "password123",
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestLoginAndValidateToken(t *testing.T) {
	authSvc := setupAuthTest(t)

	user, err := authSvc.Register(service.RegisterInput{
		Email: "login@example.com", Username: "login",
		FirstName: "Log", LastName: "In", Password: "password123",
	})
	require.NoError(t, err)

	token, err := authSvc.Login("login@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "login", claims.Username)
	assert.False(t, claims.IsStaff)
}

func TestLoginInvalidCredentials(t *testing.T) {
	authSvc := setupAuthTest(t)

	_, err := authSvc.Register(service.RegisterInput{
		Email: "x@example.com", Username: "x",
		FirstName: "X", LastName: "X", Password: "password123",
	})
	require.NoError(t, err)

	_, err = authSvc.Login("x@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))

	_, err = authSvc.Login("nobody@example.com", "password123")
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	authSvc := setupAuthTest(t)

	_, err := authSvc.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	signer := service.NewAuthService(db, "secret-one")
	verifier := service.NewAuthService(db, "secret-two")

	user := testhelpers.CreateTestUser(t, db, "forged")
	token, err := signer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}
