package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rmoralez/pos-sub000/internal/config"
	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials hides whether the username or the password failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims carried in every access token.
type Claims struct {
	UserID     uuid.UUID  `json:"uid"`
	TenantID   uuid.UUID  `json:"tid"`
	Role       string     `json:"role"`
	LocationID *uuid.UUID `json:"loc,omitempty"`
	Refresh    bool       `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *model.User
}

type AuthService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// Login verifies the password and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, tenantID uuid.UUID, username, password string) (*TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, tenantID, username)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.Parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !claims.Refresh {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Parse validates a token and returns its claims.
func (s *AuthService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HashPassword wraps bcrypt for user creation.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (s *AuthService) issue(user *model.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	refreshExpiry := now.Add(time.Duration(s.cfg.JWTRefreshHours) * time.Hour)

	access, err := s.sign(user, accessExpiry, false)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, refreshExpiry, true)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
		User:         user,
	}, nil
}

func (s *AuthService) sign(user *model.User, expiry time.Time, refresh bool) (string, error) {
	claims := Claims{
		UserID:     user.ID,
		TenantID:   user.TenantID,
		Role:       user.Role,
		LocationID: user.LocationID,
		Refresh:    refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
