package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsewell/school-scheduler-api/internal/models"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "user-1",
		Name:         "Tom",
		Email:        "tom@school.test",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
	}
	repo := &mockUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "school-scheduler-api",
	})
	return svc, user
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc, user := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	svc, user := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "wrong"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@school.test", Password: "secret123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, user := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(&mockUserRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "different"})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}
