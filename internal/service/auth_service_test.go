package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

type mockAdminRepo struct {
	users            map[string]*models.AdminUser
	lastLoginUpdated bool
}

func newMockAdminRepo(users ...*models.AdminUser) *mockAdminRepo {
	repo := &mockAdminRepo{users: make(map[string]*models.AdminUser)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("find admin by email: %w", sql.ErrNoRows)
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("find admin by id: %w", sql.ErrNoRows)
}

func (m *mockAdminRepo) Create(ctx context.Context, user *models.AdminUser) error {
	user.ID = fmt.Sprintf("admin-%d", len(m.users)+1)
	m.users[user.ID] = user
	return nil
}

func (m *mockAdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.users[id].PasswordHash = passwordHash
	return nil
}

func (m *mockAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newTestAuthService(repo *mockAdminRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "edupx-submissions-api"})
}

func adminWithPassword(t *testing.T, password string, active bool) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminUser{ID: "u1", Email: "admin@edupreneurx.com", FullName: "Desk Admin", PasswordHash: string(hash), Active: active}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAdminRepo(adminWithPassword(t, "password", true))
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@edupreneurx.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "edupx-submissions-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(newMockAdminRepo(adminWithPassword(t, "password", true)))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@edupreneurx.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@edupreneurx.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	svc := newTestAuthService(newMockAdminRepo(adminWithPassword(t, "password", false)))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@edupreneurx.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	user := adminWithPassword(t, "password", true)
	other := NewAuthService(newMockAdminRepo(user), nil, nil, AuthConfig{AccessTokenSecret: "other"})
	token, err := other.generateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	_, err = newTestAuthService(newMockAdminRepo(user)).ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceMe(t *testing.T) {
	svc := newTestAuthService(newMockAdminRepo(adminWithPassword(t, "password", true)))

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Desk Admin", info.FullName)

	_, err = svc.Me(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceCreateAdmin(t *testing.T) {
	repo := newMockAdminRepo()
	svc := newTestAuthService(repo)

	user, err := svc.CreateAdmin(context.Background(), " Desk@EduPreneurX.com ", "Desk", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "desk@edupreneurx.com", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	_, err = svc.CreateAdmin(context.Background(), "desk@edupreneurx.com", "Desk", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateAdmin(context.Background(), "other@edupreneurx.com", "", "short")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSetPassword(t *testing.T) {
	user := adminWithPassword(t, "password", true)
	svc := newTestAuthService(newMockAdminRepo(user))

	require.NoError(t, svc.SetPassword(context.Background(), user.Email, "new-password"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")))

	err := svc.SetPassword(context.Background(), "ghost@edupreneurx.com", "new-password")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
