// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"strings"
	"testing"

	"codeberg.org/oliverandrich/truefeedback/internal/apperr"
	"codeberg.org/oliverandrich/truefeedback/internal/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordValidator_Validate(t *testing.T) {
	v := auth.DefaultPasswordValidator()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"minimum length", "abcdef", true},
		{"too short", "abcde", false},
		{"multibyte counted as characters", "äöüßéè", true},
		{"bcrypt limit", strings.Repeat("a", 72), true},
		{"over bcrypt limit", strings.Repeat("a", 73), false},
		{"blank", "       ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrWeakPassword)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret1")

	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, auth.CheckPassword(hash, "secret1"))
	assert.False(t, auth.CheckPassword(hash, "secret2"))
}
