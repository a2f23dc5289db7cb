// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package suggest asks a generative model for conversation starters that
// visitors can send as anonymous messages.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"google.golang.org/genai"
)

// Separator joins suggestions in the raw model output.
const Separator = "||"

const prompt = `Create a list of three open-ended and engaging questions formatted as a single string. ` +
	`Each question should be separated by '||'. These questions are for an anonymous social messaging ` +
	`platform, like Qooh.me, and should be suitable for a diverse audience. Avoid personal or sensitive ` +
	`topics, focusing instead on universal themes that encourage friendly interaction. For example, your ` +
	`output should be structured like this: 'What's a hobby you've recently started?||If you could have ` +
	`dinner with any historical figure, who would it be?||What's a simple thing that makes you happy?'. ` +
	`Ensure the questions are intriguing, foster curiosity, and contribute to a positive and welcoming ` +
	`conversational environment.`

const requestTimeout = 15 * time.Second

// Defaults are served when no model is configured or the call fails.
var Defaults = []string{
	"What's your favorite movie?",
	"Do you have any pets?",
	"What's your dream job?",
}

// Generator produces raw text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg *config.GenAIConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Generate sends prompt to the model and returns its text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}

// Service returns suggestions and never fails.
type Service struct {
	generator Generator
}

// NewService creates a suggestion service. A nil generator serves Defaults.
func NewService(generator Generator) *Service {
	return &Service{generator: generator}
}

// Suggest returns three conversation starters.
func (s *Service) Suggest(ctx context.Context) []string {
	if s.generator == nil {
		return Defaults
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("suggest_failed", "error", err)
		return Defaults
	}

	suggestions := Split(raw)
	if len(suggestions) == 0 {
		slog.Warn("suggest_failed", "error", "empty model output")
		return Defaults
	}
	return suggestions
}

// Split parses the raw model output into trimmed, non-empty suggestions.
// Quotes the model sometimes wraps its output in are removed.
func Split(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), `'"`)
	var out []string
	for part := range strings.SplitSeq(raw, Separator) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Join renders suggestions as the raw separator-delimited string.
func Join(suggestions []string) string {
	return strings.Join(suggestions, Separator)
}
