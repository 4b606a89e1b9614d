// Package assistant wraps the remote text-generation capability behind the
// assistant account.
package assistant

import (
	"context"
	"errors"
)

// Role tags a transcript turn from the assistant's point of view
type Role string

const (
	// RoleSelf is a prior turn of the assistant account
	RoleSelf Role = "self"
	// RoleOther is a turn of the human counterpart
	RoleOther Role = "other"
)

// Turn is one entry of a role-tagged transcript
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is a single generation exchange
type Request struct {
	Model      string `json:"model"`
	Transcript []Turn `json:"transcript"`
	Directive  string `json:"directive"`
}

// Generator produces the assistant's next reply for a transcript
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned by Unavailable
var ErrNotConfigured = errors.New("assistant: no API key configured")

// Unavailable is the generator used when no API key is configured.
// Every exchange fails, so the bridge always posts its fallback.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
