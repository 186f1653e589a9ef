package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/domain"
	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User

	updatedHash string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byEmail: map[string]*domain.User{}, byID: map[int64]*domain.User{}}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = int64(len(f.byID) + 1)
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = &passwordHash
	f.updatedHash = passwordHash
	return nil
}

func testAuthService(t *testing.T, users *fakeUserRepo) *AuthService {
	t.Helper()
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}, users)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	return &domain.User{
		ID:           1,
		Name:         "Maya Odhiambo",
		Email:        "maya@example.com",
		PasswordHash: &hash,
		Role:         domain.RoleManager,
		IsActive:     true,
	}
}

func TestLoginSucceeds(t *testing.T) {
	user := activeUser(t, "correct-horse")
	svc := testAuthService(t, newFakeUserRepo(user))

	session, err := svc.Login(context.Background(), "  MAYA@example.com ", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestLoginFailures(t *testing.T) {
	user := activeUser(t, "correct-horse")
	inactive := activeUser(t, "correct-horse")
	inactive.ID = 2
	inactive.Email = "inactive@example.com"
	inactive.IsActive = false

	svc := testAuthService(t, newFakeUserRepo(user, inactive))

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"unknown email", "nobody@example.com", "correct-horse", "UNAUTHORIZED"},
		{"wrong password", "maya@example.com", "wrong", "UNAUTHORIZED"},
		{"inactive account", "inactive@example.com", "correct-horse", "UNAUTHORIZED"},
		{"blank email", "", "correct-horse", "VALIDATION_FAILED"},
		{"blank password", "maya@example.com", "", "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestChangePassword(t *testing.T) {
	user := activeUser(t, "old-pass")
	repo := newFakeUserRepo(user)
	svc := testAuthService(t, repo)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old-pass", "new-pass"))
	assert.NotEmpty(t, repo.updatedHash)
	assert.NoError(t, auth.ComparePassword(repo.updatedHash, "new-pass"))
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	user := activeUser(t, "old-pass")
	svc := testAuthService(t, newFakeUserRepo(user))

	err := svc.ChangePassword(context.Background(), user.ID, "not-the-password", "new-pass")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := testAuthService(t, newFakeUserRepo())

	err := svc.ChangePassword(context.Background(), 99, "x", "y")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
