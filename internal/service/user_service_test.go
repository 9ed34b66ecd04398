package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsewell/school-scheduler-api/internal/models"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
)

type mockUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created *models.User
	updated bool
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	m.created = user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, name, email *string, role *models.UserRole) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.updated = true
	if name != nil {
		m.byID[id].Name = *name
	}
	if email != nil {
		m.byID[id].Email = *email
	}
	if role != nil {
		m.byID[id].Role = *role
	}
	return nil
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &mockUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Sam", Email: "Sam@School.Test", Password: "secret123", Role: models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "sam@school.test", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		byEmail: map[string]*models.User{"sam@school.test": {ID: "user-1"}},
		byID:    map[string]*models.User{},
	}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Sam", Email: "sam@school.test", Password: "secret123", Role: models.RoleStudent,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	repo := &mockUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Sam", Email: "sam@school.test", Password: "secret123", Role: models.UserRole("principal"),
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestUserServiceUpdateMissingUser(t *testing.T) {
	repo := &mockUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
	svc := NewUserService(repo, nil, nil)

	name := "New"
	_, err := svc.Update(context.Background(), "missing", UpdateUserRequest{Name: &name})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestUserServiceUpdateAppliesPartialChanges(t *testing.T) {
	repo := &mockUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{"user-1": {ID: "user-1", Name: "Old", Role: models.RoleStudent}},
	}
	svc := NewUserService(repo, nil, nil)

	name := "New"
	user, err := svc.Update(context.Background(), "user-1", UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.True(t, repo.updated)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, models.RoleStudent, user.Role)
}
