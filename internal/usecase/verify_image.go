package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/csera5/BlockchainTech/internal/domain"
	"github.com/csera5/BlockchainTech/internal/infra/fingerprint"
)

type VerifyRequest struct {
	Image []byte
}

type VerifyResult struct {
	Matched     bool
	Fingerprint string
	Record      *domain.CertificationRecord
}

// VerifyImage recomputes the canonical fingerprint of an uploaded image and
// looks it up in the index. A byte-for-byte re-encode is not required; any
// image that normalizes to the same pixels matches.
type VerifyImage struct {
	Normalizer Normalizer
	Index      RecordIndex
}

func (uc *VerifyImage) Execute(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	artifact, err := uc.Normalizer.Normalize(bytes.NewReader(req.Image))
	if err != nil {
		return nil, err
	}
	defer os.Remove(artifact)

	fp, err := fingerprint.FromFile(artifact)
	if err != nil {
		return nil, err
	}

	record, err := uc.Index.Get(ctx, fp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &VerifyResult{Matched: false, Fingerprint: fp}, nil
		}
		return nil, err
	}
	return &VerifyResult{Matched: true, Fingerprint: fp, Record: record}, nil
}
