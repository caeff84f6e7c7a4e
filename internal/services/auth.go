package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"parties247/internal/domain"
)

// AdminCredentials identify the single administrator account.
type AdminCredentials struct {
	Email        string
	PasswordSalt string
	PasswordHash string
}

type authService struct {
	admin     AdminCredentials
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
	jwtExpiry time.Duration
}

// NewAuthService creates an AuthService for the configured admin account.
// With no hash configured every login fails.
func NewAuthService(admin AdminCredentials, hasher domain.PasswordHasher, issuer domain.TokenIssuer, jwtExpiry time.Duration) domain.AuthService {
	admin.Email = normalizeEmail(admin.Email)
	return &authService{admin: admin, hasher: hasher, issuer: issuer, jwtExpiry: jwtExpiry}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", domain.ErrUnauthorized
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(s.admin.Email)) == 1
	// always run the hash comparison so timing does not reveal the admin email
	passErr := s.hasher.Compare(s.admin.PasswordHash, s.admin.PasswordSalt, password)
	if !emailOK || passErr != nil {
		return "", domain.ErrUnauthorized
	}
	token, err := s.issuer.Issue(s.admin.Email, []string{domain.RoleAdmin}, s.jwtExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
