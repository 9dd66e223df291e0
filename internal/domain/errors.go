package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("provider not configured")
	ErrNoImages      = errors.New("provider returned no images")
	ErrPollTimeout   = errors.New("polling timed out")
	ErrRunNotFound   = errors.New("batch run not found")
)

// ProviderError is an HTTP-level failure reported by an external provider.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: http %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: %s (http %d)", e.Provider, e.Message, e.Status)
}

// GenerationError signals that an asynchronous provider job reached its FAILED
// terminal state.
type GenerationError struct {
	Provider string
	Detail   string
}

func (e *GenerationError) Error() string {
	if e.Detail == "" {
		return e.Provider + ": generation failed"
	}
	return fmt.Sprintf("%s: generation failed: %s", e.Provider, e.Detail)
}
