package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/campustix/campustix/internal/domain"
)

var (
	ErrInvalidCredential = errors.New("invalid or expired credential")
)

// Service issues and verifies HS256 session tokens. Verification is
// stateless and shares no mutable state with the inventory subsystem, so it
// can run fully in parallel with purchases.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
}

func New(secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}

	return &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// Issue signs a session token for the subject, valid for the configured TTL.
func (s *Service) Issue(subject domain.Subject) (string, error) {
	const op = "auth.Service.Issue"

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject.ID,
		"name": subject.Name,
		"exp":  now.Add(s.tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return signed, nil
}

// Verify validates a bearer credential and resolves the subject identity.
//
// Returns:
//   - *domain.Subject: the verified subject.
//   - error: auth.ErrInvalidCredential if the token is malformed, has a bad
//     signature, or is expired.
func (s *Service) Verify(ctx context.Context, credential string) (*domain.Subject, error) {
	const op = "auth.Service.Verify"

	token, err := jwt.Parse(credential, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredential)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredential)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredential)
	}

	name, _ := claims["name"].(string)

	return &domain.Subject{ID: sub, Name: name}, nil
}
