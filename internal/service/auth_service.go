package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/database"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AuthService provides registration, login and profile use cases.
type AuthService struct {
	repo      authUserRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, audit: audit, validator: validate, logger: logger, config: config}
}

// Register creates a student or teacher account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ip, userAgent string) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, role)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, user.ID, models.AuditActionRegister, ip, userAgent, map[string]string{"role": string(role)})
	return s.issue(user)
}

// CreateAdmin provisions an administrator. Only reachable from the admin CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	req := models.RegisterRequest{Email: email, Password: password, Name: name}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid admin payload")
	}
	user, err := s.createUser(ctx, email, password, name, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, user.ID, models.AuditActionAdminCreate, "", "cli", nil)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password, name string, role models.UserRole) (*models.User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "User already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check existing user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "User already exists")
		}
		return nil, internalError(err, "failed to create user")
	}
	return user, nil
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	s.recordAudit(ctx, user.ID, models.AuditActionLogin, req.IP, req.UserAgent, map[string]string{"status": "success"})
	return s.issue(user)
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}

// UpdateProfile changes the caller's name and profile picture.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	if req.Name == nil && req.ProfilePicture == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.ProfilePicture != nil {
		picture := strings.TrimSpace(*req.ProfilePicture)
		if picture == "" {
			user.ProfilePicture = nil
		} else {
			user.ProfilePicture = &picture
		}
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to update profile")
	}
	return user, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.WrapAs(err, appErrors.ErrTokenExpired, "")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, "Not authorized, token failed")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Expiry.Seconds()),
		User:      user.Info(),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) recordAudit(ctx context.Context, userID, action, ip, userAgent string, values map[string]string) {
	if s.audit == nil {
		return
	}
	var payload []byte
	if values != nil {
		payload, _ = json.Marshal(values)
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  payload,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}
