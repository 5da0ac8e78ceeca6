package llm

import (
	"context"
	"errors"
	"fmt"

	"calorie-buddy/internal/shared"
)

// ErrNotConfigured is returned by providers whose API key was not supplied.
var ErrNotConfigured = errors.New("ai provider not configured")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Image is an inline image sent to a vision-capable model.
type Image struct {
	MIMEType string
	Data     []byte
}

// TextGenerator is an interface for generating text from a system
// instruction and a user prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (ContentResponse, error)
}

// VisionGenerator describes an image following a system instruction.
type VisionGenerator interface {
	DescribeImage(ctx context.Context, system, prompt string, img Image) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Unconfigured stands in for a provider that has no API key. Every call
// fails with ErrNotConfigured so the service can start without AI access.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) GenerateContent(context.Context, string, string) (ContentResponse, error) {
	return ContentResponse{}, fmt.Errorf("%s: %w", u.Provider, ErrNotConfigured)
}

func (u Unconfigured) DescribeImage(context.Context, string, string, Image) (ContentResponse, error) {
	return ContentResponse{}, fmt.Errorf("%s: %w", u.Provider, ErrNotConfigured)
}
