// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package suggest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/services/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	out    string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.out, s.err
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"three", "a?||b?||c?", []string{"a?", "b?", "c?"}},
		{"whitespace", "  a? || b?||c?\n", []string{"a?", "b?", "c?"}},
		{"quoted", "'a?||b?'", []string{"a?", "b?"}},
		{"empty parts dropped", "a?||||b?||", []string{"a?", "b?"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggest.Split(tt.raw))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a||b", suggest.Join([]string{"a", "b"}))
}

func TestSuggest_FromModel(t *testing.T) {
	gen := &stubGenerator{out: "What's a hobby?||Who inspires you?||What makes you happy?"}
	svc := suggest.NewService(gen)

	got := svc.Suggest(context.Background())

	assert.Equal(t, []string{"What's a hobby?", "Who inspires you?", "What makes you happy?"}, got)
	assert.True(t, strings.Contains(gen.prompt, "'||'"))
}

func TestSuggest_FallbackOnError(t *testing.T) {
	svc := suggest.NewService(&stubGenerator{err: errors.New("quota exceeded")})

	assert.Equal(t, suggest.Defaults, svc.Suggest(context.Background()))
}

func TestSuggest_FallbackOnEmptyOutput(t *testing.T) {
	svc := suggest.NewService(&stubGenerator{out: " || "})

	assert.Equal(t, suggest.Defaults, svc.Suggest(context.Background()))
}

func TestSuggest_NoGenerator(t *testing.T) {
	svc := suggest.NewService(nil)

	assert.Equal(t, suggest.Defaults, svc.Suggest(context.Background()))
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := suggest.NewGeminiGenerator(context.Background(), &config.GenAIConfig{Model: "gemini-2.0-flash"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
