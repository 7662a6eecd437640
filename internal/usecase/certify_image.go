package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/csera5/BlockchainTech/internal/domain"
	"github.com/csera5/BlockchainTech/internal/infra/fingerprint"
)

type CertifyRequest struct {
	RequestID string
	Image     []byte
	Name      string
	Signer    string
	MediaType string
}

type CertifyResult struct {
	RequestID   string
	Fingerprint string
	ContentID   string
	TxID        string
	Record      domain.CertificationRecord
}

// CertifyImage runs the whole certification pipeline as one server-side
// state machine: normalize, fingerprint, publish, index, anchor on chain.
// Every transition is reported to the progress sinks; failures carry the
// stage they interrupted, so a caller can tell "pinned but not certified
// on chain" from total failure.
//
// The pipeline splits at Begin/Finish so callers can reject bad uploads
// (decode failures, policy denials, duplicates) before acknowledging the
// request, then run the slow publish/index/chain tail out of band.
type CertifyImage struct {
	Normalizer Normalizer
	Extractor  domain.Extractor
	Publisher  domain.Publisher
	Index      RecordIndex
	Certifier  Certifier
	Policy     domain.PolicyEngine
	Sinks      []ProgressSink

	AllowRecertify bool
	Now            func() time.Time
}

// PendingCertification holds a normalized artifact that passed admission
// and duplicate checks but has not been published or anchored yet.
type PendingCertification struct {
	uc          *CertifyImage
	req         CertifyRequest
	artifact    string
	fingerprint string
	capture     domain.CaptureMetadata
}

func (p *PendingCertification) Fingerprint() string { return p.fingerprint }

func (uc *CertifyImage) Execute(ctx context.Context, req CertifyRequest) (*CertifyResult, error) {
	pending, err := uc.Begin(ctx, req)
	if err != nil {
		return nil, err
	}
	return pending.Finish(ctx)
}

// Begin normalizes the upload, fingerprints it, and applies the admission
// policy and duplicate check. On success the caller owns the returned
// pending certification and must call Finish.
func (uc *CertifyImage) Begin(ctx context.Context, req CertifyRequest) (*PendingCertification, error) {
	if req.Signer == "" {
		req.Signer = "Anonymous"
	}

	uc.emit(ctx, StageUpdate{RequestID: req.RequestID, Stage: domain.StageCollectingMetadata})

	if uc.Policy != nil {
		decision, err := uc.Policy.Evaluate(ctx, domain.AdmissionInput{
			Signer:    req.Signer,
			MediaType: req.MediaType,
			SizeBytes: int64(len(req.Image)),
		})
		if err != nil {
			return nil, uc.fail(ctx, req.RequestID, "", fmt.Errorf("admission policy: %w", err))
		}
		if !decision.Allow {
			err := domain.ErrPolicyDenied
			if len(decision.Reasons) > 0 {
				err = fmt.Errorf("%w: %s", domain.ErrPolicyDenied, strings.Join(decision.Reasons, "; "))
			}
			return nil, uc.fail(ctx, req.RequestID, "", err)
		}
	}

	artifact, err := uc.Normalizer.Normalize(bytes.NewReader(req.Image))
	if err != nil {
		return nil, uc.fail(ctx, req.RequestID, "", err)
	}

	fp, err := fingerprint.FromFile(artifact)
	if err != nil {
		os.Remove(artifact)
		return nil, uc.fail(ctx, req.RequestID, "", err)
	}
	uc.emit(ctx, StageUpdate{RequestID: req.RequestID, Fingerprint: fp, Stage: domain.StageCollectingMetadata})

	if !uc.AllowRecertify {
		if _, err := uc.Index.Get(ctx, fp); err == nil {
			os.Remove(artifact)
			return nil, uc.fail(ctx, req.RequestID, fp, domain.ErrDuplicateFingerprint)
		} else if !errors.Is(err, domain.ErrNotFound) {
			os.Remove(artifact)
			return nil, uc.fail(ctx, req.RequestID, fp, err)
		}
	}

	// Capture metadata comes from the original upload; absence is fine.
	var capture domain.CaptureMetadata
	if uc.Extractor != nil {
		if extracted, err := uc.Extractor.Extract(bytes.NewReader(req.Image)); err == nil {
			capture = extracted
		}
	}

	return &PendingCertification{
		uc:          uc,
		req:         req,
		artifact:    artifact,
		fingerprint: fp,
		capture:     capture,
	}, nil
}

// Finish publishes the normalized artifact, indexes the record, and anchors
// it on chain. The normalized artifact is removed regardless of outcome.
func (p *PendingCertification) Finish(ctx context.Context) (*CertifyResult, error) {
	uc := p.uc
	defer os.Remove(p.artifact)

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}

	uc.emit(ctx, StageUpdate{RequestID: p.req.RequestID, Fingerprint: p.fingerprint, Stage: domain.StagePublishing})
	contentID, err := uc.publish(ctx, p.artifact, p.req.Name)
	if err != nil {
		return nil, uc.fail(ctx, p.req.RequestID, p.fingerprint, domain.FailedAt(domain.StagePublishing, err))
	}

	record := domain.NewRecord(p.fingerprint, contentID, p.req.Signer, p.capture, now())

	uc.emit(ctx, StageUpdate{RequestID: p.req.RequestID, Fingerprint: p.fingerprint, ContentID: contentID, Stage: domain.StageIndexing})
	if uc.AllowRecertify {
		err = uc.Index.Replace(ctx, record)
	} else {
		err = uc.Index.Put(ctx, record)
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateFingerprint) {
			return nil, uc.fail(ctx, p.req.RequestID, p.fingerprint, err)
		}
		return nil, uc.fail(ctx, p.req.RequestID, p.fingerprint, domain.FailedAt(domain.StageIndexing, err))
	}

	uc.emit(ctx, StageUpdate{RequestID: p.req.RequestID, Fingerprint: p.fingerprint, ContentID: contentID, Stage: domain.StageMetadataAssembled})
	txID, err := uc.Certifier.Certify(ctx, record, func(stage domain.Stage) {
		uc.emit(ctx, StageUpdate{RequestID: p.req.RequestID, Fingerprint: p.fingerprint, ContentID: contentID, Stage: stage})
	})
	if err != nil {
		// The image is pinned and indexed at this point; the stage tag
		// lets the caller surface that partial success.
		return nil, uc.fail(ctx, p.req.RequestID, p.fingerprint, err)
	}

	uc.emit(ctx, StageUpdate{RequestID: p.req.RequestID, Fingerprint: p.fingerprint, ContentID: contentID, TxID: txID, Stage: domain.StageSubmitted})

	return &CertifyResult{
		RequestID:   p.req.RequestID,
		Fingerprint: p.fingerprint,
		ContentID:   contentID,
		TxID:        txID,
		Record:      record,
	}, nil
}

func (uc *CertifyImage) publish(ctx context.Context, artifact, name string) (string, error) {
	f, err := os.Open(artifact)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if name == "" {
		name = "image"
	}
	return uc.Publisher.Publish(ctx, f, info.Size(), name+".png")
}

func (uc *CertifyImage) emit(ctx context.Context, update StageUpdate) {
	update.At = time.Now()
	for _, sink := range uc.Sinks {
		if sink != nil {
			sink.OnStage(ctx, update)
		}
	}
}

func (uc *CertifyImage) fail(ctx context.Context, requestID, fp string, err error) error {
	update := StageUpdate{
		RequestID:   requestID,
		Fingerprint: fp,
		Stage:       domain.StageFailed,
		Error:       err.Error(),
	}
	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		update.FailedStage = stageErr.Stage
	}
	uc.emit(ctx, update)
	return err
}
