package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type fakeUserRepo struct {
	users     map[string]*models.User
	createErr error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

type fakeAudit struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAudit) Create(ctx context.Context, log *models.AuditLog) error {
	f.entries = append(f.entries, log)
	return f.err
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(repo *fakeUserRepo, audit *fakeAudit) *AuthService {
	return NewAuthService(repo, audit, nil, nil, AuthConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"})
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := newTestAuthService(repo, audit)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{Email: "new@example.com", Password: "secret1", Name: "New User"}, "127.0.0.1", "ua")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRegister, audit.entries[0].Action)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "New User", claims.Name)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "Admin", Role: models.RoleAdmin}, "", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u-1", Email: "taken@example.com"})
	svc := newTestAuthService(repo, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "Taken@example.com", Password: "secret1", Name: "Someone"}, "", "")
	assert.ErrorIs(t, err, appErrors.ErrDuplicate)
}

func TestRegisterUniqueViolationRace(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = &pq.Error{Code: "23505", Constraint: "users_email_key"}
	svc := newTestAuthService(repo, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "race@example.com", Password: "secret1", Name: "Racer"}, "", "")
	assert.ErrorIs(t, err, appErrors.ErrDuplicate)
}

func TestLoginSuccessRecordsAudit(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u-1", Email: "t@example.com", Name: "Teacher", Role: models.RoleTeacher, PasswordHash: hashed(t, "pass123")})
	audit := &fakeAudit{err: errors.New("audit down")}
	svc := newTestAuthService(repo, audit)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@example.com", Password: "pass123", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "10.0.0.1", audit.entries[0].IPAddress)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u-1", Email: "t@example.com", PasswordHash: hashed(t, "pass123")})
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), nil)

	past := time.Now().Add(-2 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), nil)
	other := NewAuthService(newFakeUserRepo(), nil, nil, nil, AuthConfig{Secret: "other"})

	resp, err := other.issue(&models.User{ID: "u-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u-1", Email: "s@example.com", Name: "Old"})
	svc := newTestAuthService(repo, nil)

	name := "  New Name "
	picture := "/uploads/avatars/me.png"
	user, err := svc.UpdateProfile(context.Background(), "u-1", models.UpdateProfileRequest{Name: &name, ProfilePicture: &picture})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	require.NotNil(t, user.ProfilePicture)
	assert.Equal(t, picture, *user.ProfilePicture)

	_, err = svc.UpdateProfile(context.Background(), "u-1", models.UpdateProfileRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCreateAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := newTestAuthService(repo, audit)

	user, err := svc.CreateAdmin(context.Background(), "root@example.com", "supersecret", "Root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionAdminCreate, audit.entries[0].Action)
}
