// Package indexmem is the in-memory fingerprint index used in no-database
// mode and in tests. Same contract as the Postgres repository: atomic
// per-key writes, read-your-writes, explicit duplicate rejection.
package indexmem

import (
	"context"
	"sync"

	"github.com/csera5/BlockchainTech/internal/domain"
)

type Index struct {
	mu      sync.Mutex
	records map[string]domain.CertificationRecord
}

func New() *Index {
	return &Index{records: make(map[string]domain.CertificationRecord)}
}

func (i *Index) Get(ctx context.Context, fingerprint string) (*domain.CertificationRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	record, ok := i.records[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (i *Index) Put(ctx context.Context, record domain.CertificationRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.records[record.Fingerprint]; exists {
		return domain.ErrDuplicateFingerprint
	}
	i.records[record.Fingerprint] = record
	return nil
}

func (i *Index) Replace(ctx context.Context, record domain.CertificationRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records[record.Fingerprint] = record
	return nil
}
