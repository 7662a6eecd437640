package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/csera5/BlockchainTech/internal/domain"
	"github.com/csera5/BlockchainTech/internal/infra/indexmem"
)

func TestVerifyImage_Matched(t *testing.T) {
	content := []byte("canonical-bytes")
	index := indexmem.New()
	record := domain.NewRecord(fingerprintOf(content), "bafytestcid", "alice", domain.CaptureMetadata{}, time.Now())
	if err := index.Put(context.Background(), record); err != nil {
		t.Fatalf("seed index: %v", err)
	}

	uc := &VerifyImage{
		Normalizer: &fakeNormalizer{content: content},
		Index:      index,
	}
	result, err := uc.Execute(context.Background(), VerifyRequest{Image: []byte("re-upload")})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Matched {
		t.Fatalf("expected match")
	}
	if result.Record == nil || result.Record.Signer != "alice" {
		t.Fatalf("record = %+v", result.Record)
	}
}

func TestVerifyImage_Unmatched(t *testing.T) {
	uc := &VerifyImage{
		Normalizer: &fakeNormalizer{content: []byte("never-certified")},
		Index:      indexmem.New(),
	}
	result, err := uc.Execute(context.Background(), VerifyRequest{Image: []byte("fresh")})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Matched {
		t.Fatalf("unexpected match")
	}
	if result.Fingerprint != fingerprintOf([]byte("never-certified")) {
		t.Fatalf("fingerprint = %s", result.Fingerprint)
	}
	if result.Record != nil {
		t.Fatalf("record should be nil")
	}
}
