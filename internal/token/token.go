// Package token issues and verifies the signed tokens used for API access
// and email verification.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/models"
)

const (
	issuer   = "inkwell-api"
	audience = "inkwell-client"

	// purposeVerification marks tokens minted for the email-verification
	// link so they cannot be replayed as access tokens.
	purposeVerification = "email_verification"
)

// Service mints and parses HMAC-signed JWTs.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New returns a token Service signing with the given secret. ttl applies to
// both access and verification tokens.
func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// IssueAccess creates an access token for the given user. The subject claim
// carries the user ID as a string.
func (s *Service) IssueAccess(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      issuer,
		"aud":      audience,
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccess validates an access token and returns the user ID from its
// subject claim.
func (s *Service) ParseAccess(tokenString string) (uint, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "" {
		return 0, fmt.Errorf("token is not an access token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing subject claim")
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

// IssueVerification creates an email-verification token. The subject claim
// carries the username, matching the lookup done when the link is followed.
func (s *Service) IssueVerification(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.Username,
		"purpose": purposeVerification,
		"iss":     issuer,
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseVerification validates an email-verification token and returns the
// username from its subject claim.
func (s *Service) ParseVerification(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeVerification {
		return "", fmt.Errorf("token is not a verification token")
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return username, nil
}

func (s *Service) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
