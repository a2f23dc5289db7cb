// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and parses bearer tokens for API clients.
package token

import (
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "truefeedback"

// ErrDisabled is returned when no signing secret is configured.
var ErrDisabled = errors.New("bearer tokens are disabled")

// Claims carries the identity alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// Service signs tokens with HS256.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(cfg *config.TokenConfig) *Service {
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured.
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// Issue returns a signed token for identity and its expiry.
func (s *Service) Issue(identity models.Identity) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrDisabled
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:            identity.Username,
		IsVerified:          identity.IsVerified,
		IsAcceptingMessages: identity.IsAcceptingMessages,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates tokenString and returns its identity.
func (s *Service) Parse(tokenString string) (*models.Identity, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.ErrUnauthenticated.Wrap(err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperr.ErrUnauthenticated
	}

	return &models.Identity{
		AccountID:           claims.Subject,
		Username:            claims.Username,
		IsVerified:          claims.IsVerified,
		IsAcceptingMessages: claims.IsAcceptingMessages,
	}, nil
}
