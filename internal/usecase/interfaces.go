package usecase

import (
	"context"
	"io"
	"time"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// RecordIndex is the durable fingerprint → certification record mapping.
// Put fails with domain.ErrDuplicateFingerprint for an already-certified
// fingerprint; Replace overwrites unconditionally.
type RecordIndex interface {
	Get(ctx context.Context, fingerprint string) (*domain.CertificationRecord, error)
	Put(ctx context.Context, record domain.CertificationRecord) error
	Replace(ctx context.Context, record domain.CertificationRecord) error
}

// Normalizer canonicalizes an upload into an artifact file whose bytes
// depend only on pixel content. Callers own cleanup of the returned path.
type Normalizer interface {
	Normalize(r io.Reader) (string, error)
}

// Certifier assembles on-chain metadata for a record, then builds, signs
// and submits the anchoring transaction. onStage (optional) observes the
// TX_BUILT and TX_SIGNED transitions; failures are stage-tagged.
type Certifier interface {
	Certify(ctx context.Context, record domain.CertificationRecord, onStage func(domain.Stage)) (string, error)
}

// StageUpdate describes one pipeline transition for status reporting.
type StageUpdate struct {
	RequestID   string       `json:"request_id"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Stage       domain.Stage `json:"stage"`
	ContentID   string       `json:"content_id,omitempty"`
	TxID        string       `json:"tx_id,omitempty"`
	Error       string       `json:"error,omitempty"`
	FailedStage domain.Stage `json:"failed_stage,omitempty"`
	At          time.Time    `json:"at"`
}

// ProgressSink observes pipeline transitions. Implementations must be cheap
// and must not fail the pipeline.
type ProgressSink interface {
	OnStage(ctx context.Context, update StageUpdate)
}
