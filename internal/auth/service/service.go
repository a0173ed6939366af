package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"corralon_backend/platform/apperr"
	"corralon_backend/platform/config"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/logger"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")

// defaultTokenTTL applies when the configured TTL is not positive.
const defaultTokenTTL = 12 * time.Hour

// Service authenticates the back-office administrator.
type Service struct {
	cfg config.AdminAuthConfig
	log *logger.Logger
}

func New(cfg config.AdminAuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// SignIn checks the credentials and issues a bearer token.
func (s *Service) SignIn(_ context.Context, username, plainPassword string) (string, time.Time, error) {
	if !s.checkCredentials(username, plainPassword) {
		s.log.AuthEvent("sign_in", username, false, "invalid credentials")
		return "", time.Time{}, ErrInvalidCredentials
	}

	ttl := s.cfg.GetAccessTokenTTL()
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token, expiresAt, err := httpkit.IssueAccessToken(s.cfg, username, ttl)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "failed to issue token", err)
	}

	s.log.AuthEvent("sign_in", username, true, "")
	return token, expiresAt, nil
}

func (s *Service) checkCredentials(username, plainPassword string) bool {
	expected := s.cfg.GetAdminUsername()
	hash := s.cfg.GetAdminPasswordHash()
	if expected == "" || hash == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(expected)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plainPassword))
	return userOK && err == nil
}

// HashPassword returns the bcrypt hash to store in ADMIN_PASSWORD_HASH.
func HashPassword(plainPassword string) (string, error) {
	if len(plainPassword) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
