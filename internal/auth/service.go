// Package auth - Authentication Service
// Xử lý tất cả logic liên quan đến authentication và authorization
// Chức năng:
//   - User registration với password hashing (bcrypt)
//   - User login với JWT token generation
//   - Token validation và parsing (returns models.Claims per spec §4.1 C1)
//   - Profile retrieval and token refresh
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"mangahub/pkg/models"
	"mangahub/pkg/utils"
)

type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ValidateToken(tokenStr string) (*models.Claims, error)
	RefreshToken(ctx context.Context, userID string) (string, error)
	GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error)
}

type service struct {
	db        *sql.DB
	jwtSecret []byte
	issuer    string
	exp       time.Duration
}

type jwtClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewService(db *sql.DB, secret, issuer string, exp time.Duration) Service {
	return &service{
		db:        db,
		jwtSecret: []byte(secret),
		issuer:    issuer,
		exp:       exp,
	}
}

func (s *service) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.NewAppError(models.ErrCodeValidation, "invalid registration data", 400, err)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?",
		req.Username, req.Email,
	).Scan(&exists)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeInternal, "failed checking user uniqueness", 500, err)
	}
	if exists > 0 {
		return nil, models.NewAppError(models.ErrCodeConflict, "username or email already exists", 409, models.ErrUsernameExists)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to hash password", 500, err)
	}

	now := time.Now()
	userID := uuid.New().String()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, display_name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'user', 1, ?, ?)`,
		userID, req.Username, req.Email, hash, req.Username, now, now,
	)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to create user", 500, err)
	}

	return &models.UserProfile{
		ID:          userID,
		Username:    req.Username,
		DisplayName: req.Username,
		CreatedAt:   now,
	}, nil
}

func (s *service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.NewAppError(models.ErrCodeValidation, "invalid login data", 400, err)
	}

	var (
		id           string
		username     string
		email        string
		hash         string
		displayName  string
		role         string
		createdAt    time.Time
		lastLoginPtr *time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, display_name, role, created_at, last_login_at
		FROM users
		WHERE username = ? OR email = ?`,
		req.Username, req.Username,
	).Scan(&id, &username, &email, &hash, &displayName, &role, &createdAt, &lastLoginPtr)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewAppError(models.ErrCodeUnauthorized, "invalid credentials", 401, models.ErrInvalidCredentials)
		}
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to query user", 500, err)
	}

	if !utils.CheckPassword(hash, req.Password) {
		return nil, models.NewAppError(models.ErrCodeUnauthorized, "invalid credentials", 401, models.ErrInvalidCredentials)
	}

	now := time.Now()
	expiresAt := now.Add(s.exp)

	tokenStr, err := s.sign(id, username, email, role, expiresAt)
	if err != nil {
		return nil, err
	}

	_, _ = s.db.ExecContext(ctx, "UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?", now, now, id)

	profile := models.UserProfile{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   createdAt,
		LastLoginAt: lastLoginPtr,
	}

	return &models.LoginResponse{
		Token:     tokenStr,
		ExpiresAt: expiresAt,
		User:      profile,
	}, nil
}

func (s *service) sign(userID, username, email, role string, expiresAt time.Time) (string, error) {
	claims := jwtClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", models.NewAppError(models.ErrCodeInternal, "failed to sign token", 500, err)
	}
	return tokenStr, nil
}

// ValidateToken parses and verifies a bearer token, returning the identity
// claims the gateway and chat fabric hand off to downstream components
// (spec §4.1 C1, §4.4's bearer-verified-by-C5 requirement).
func (s *service) ValidateToken(tokenStr string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewAppError(models.ErrCodeUnauthorized, "invalid token", 401, models.ErrInvalidToken)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, models.NewAppError(models.ErrCodeUnauthorized, "invalid token claims", 401, models.ErrInvalidToken)
	}

	return &models.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}

// RefreshToken issues a new JWT for an existing, still-active user.
func (s *service) RefreshToken(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return s.sign(user.ID, user.Username, "", "user", time.Now().Add(s.exp))
}

// GetUserByID retrieves a user profile by their ID
func (s *service) GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		id          string
		username    string
		displayName string
		createdAt   time.Time
		lastLogin   *time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, created_at, last_login_at
		FROM users
		WHERE id = ? AND is_active = 1`,
		userID,
	).Scan(&id, &username, &displayName, &createdAt, &lastLogin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewAppError(models.ErrCodeNotFound, "user not found", 404, nil)
		}
		return nil, models.NewAppError(models.ErrCodeInternal, "failed to query user", 500, err)
	}

	return &models.UserProfile{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   createdAt,
		LastLoginAt: lastLogin,
	}, nil
}
