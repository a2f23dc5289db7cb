// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = bcrypt.DefaultCost

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// PasswordValidator validates sign-up passwords
type PasswordValidator struct {
	MinLength int
}

// DefaultPasswordValidator returns the validator used for sign-up
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{MinLength: 6}
}

// Validate returns ErrWeakPassword carrying the first failed rule.
func (v *PasswordValidator) Validate(password string) error {
	switch {
	case utf8.RuneCountInString(password) < v.MinLength:
		return apperr.ErrWeakPassword.Wrap(fmt.Errorf("password must be at least %d characters", v.MinLength))
	case len(password) > maxPasswordBytes:
		return apperr.ErrWeakPassword.Wrap(fmt.Errorf("password must be at most %d bytes", maxPasswordBytes))
	case strings.TrimSpace(password) == "":
		return apperr.ErrWeakPassword.Wrap(fmt.Errorf("password cannot be blank"))
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
