package domain

import (
	"context"
	"io"
	"time"
)

// Publisher stores bytes on a content-addressed network and returns the
// content identifier. Publishing identical bytes twice yields the same
// identifier, so retries are always safe to re-issue.
type Publisher interface {
	Publish(ctx context.Context, r io.Reader, size int64, name string) (string, error)
}

// Extractor reads capture metadata out of the original upload. Extraction
// failures are not fatal to certification; a zero CaptureMetadata is a
// valid result.
type Extractor interface {
	Extract(r io.Reader) (CaptureMetadata, error)
}

// AdmissionInput is what the optional admission policy sees before a
// pipeline starts.
type AdmissionInput struct {
	Signer    string `json:"signer"`
	MediaType string `json:"media_type"`
	SizeBytes int64  `json:"size_bytes"`
}

type AdmissionDecision struct {
	Allow   bool     `json:"allow"`
	Reasons []string `json:"reasons,omitempty"`
}

type PolicyEngine interface {
	Evaluate(ctx context.Context, input AdmissionInput) (AdmissionDecision, error)
}

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
