// Package auth issues and validates the JWTs protecting the household API and
// handles password hashing for member accounts. Access tokens authorize
// requests; refresh tokens are longer-lived JWTs that can only be redeemed at
// the refresh endpoint for a fresh pair.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// Issuer identifies tokens minted by this service; tokens signed with the
// same secret but another issuer are rejected.
const Issuer = "homestead-ops"

// Token type claim values. A refresh token is never accepted where an access
// token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Default token lifetimes applied when the configuration leaves them unset.
const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Service signs and verifies the dashboard's tokens.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService builds a token service from configuration. The secret is
// mandatory; lifetimes fall back to the package defaults when not positive.
func NewService(secret string, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// HashPassword hashes a password using bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateAccessToken mints the short-lived token API requests carry.
func (s *Service) GenerateAccessToken(user *models.User) (string, error) {
	return s.generate(user, TokenTypeAccess, s.accessTTL)
}

// GenerateRefreshToken mints the long-lived token redeemable at the refresh
// endpoint.
func (s *Service) GenerateRefreshToken(user *models.User) (string, error) {
	return s.generate(user, TokenTypeRefresh, s.refreshTTL)
}

func (s *Service) generate(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      Issuer,
		"sub":      user.ID.Hex(),
		"username": user.Username,
		"role":     string(user.Role),
		"typ":      tokenType,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates an access token (with or without "Bearer " prefix)
// and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	return s.validate(strings.TrimPrefix(tokenString, "Bearer "), TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *Service) ValidateRefreshToken(tokenString string) (*models.Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *Service) validate(tokenString, wantType string) (*models.Claims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	roleStr, _ := claims["role"].(string)
	tokenType, _ := claims["typ"].(string)
	exp, _ := claims["exp"].(float64)
	if userID == "" || username == "" || !models.IsValidRole(models.Role(roleStr)) {
		return nil, ErrInvalidToken
	}
	if tokenType != wantType {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID:    userID,
		Username:  username,
		Role:      models.Role(roleStr),
		TokenType: tokenType,
		Exp:       int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts the bare token from an Authorization header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// ValidatePassword validates password strength.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// ValidateEmail validates email format.
func (s *Service) ValidateEmail(email string) error {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" || !strings.Contains(domain, ".") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername validates username format: 3-30 characters from letters,
// digits, dot, dash, underscore.
func (s *Service) ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return errors.New("username must be at most 30 characters")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return fmt.Errorf("username contains invalid character %q", r)
		}
	}
	return nil
}
