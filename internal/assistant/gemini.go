package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Gemini generates replies through the Gemini API
type Gemini struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini API client for apiKey
func NewGemini(ctx context.Context, apiKey string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, logger: logger}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	contents := buildContents(req.Transcript)
	if len(contents) == 0 {
		return "", errors.New("assistant: empty transcript")
	}

	var cfg *genai.GenerateContentConfig
	if req.Directive != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Directive, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("assistant: nil response")
	}

	text := resp.Text()
	g.logger.Debug("assistant reply generated", "model", req.Model, "turns", len(req.Transcript), "chars", len(text))
	return text, nil
}

// buildContents maps transcript turns onto Gemini chat roles
func buildContents(transcript []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		contents = append(contents, genai.NewContentFromText(turn.Text, genaiRole(turn.Role)))
	}
	return contents
}

func genaiRole(r Role) genai.Role {
	if r == RoleSelf {
		return genai.RoleModel
	}
	return genai.RoleUser
}
