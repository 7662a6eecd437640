package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// CertificationRepository persists the fingerprint index in Postgres.
// Inserts are single-row and atomic, so the flat-file last-writer-wins
// hazard of a load-mutate-rewrite index cannot occur here.
type CertificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

func (r *CertificationRepository) Get(ctx context.Context, fingerprint string) (*domain.CertificationRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("certification repository not initialized")
	}
	var model CertificationRecordModel
	err := r.db.WithContext(ctx).First(&model, "fingerprint = ?", fingerprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record := toDomain(model)
	return &record, nil
}

// Put inserts a record and fails with ErrDuplicateFingerprint when the
// fingerprint is already certified.
func (r *CertificationRepository) Put(ctx context.Context, record domain.CertificationRecord) error {
	if r == nil || r.db == nil {
		return errors.New("certification repository not initialized")
	}
	model := toModel(record)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDuplicateFingerprint
	}
	return nil
}

// Replace upserts unconditionally. Only used when the deployment explicitly
// allows re-certification to refresh an existing claim.
func (r *CertificationRepository) Replace(ctx context.Context, record domain.CertificationRecord) error {
	if r == nil || r.db == nil {
		return errors.New("certification repository not initialized")
	}
	model := toModel(record)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func toModel(record domain.CertificationRecord) CertificationRecordModel {
	return CertificationRecordModel{
		Fingerprint:      record.Fingerprint,
		StorageID:        record.StorageID,
		Signer:           record.Signer,
		CaptureLocation:  record.CaptureLocation,
		CaptureTimestamp: record.CaptureTimestamp,
		CameraModel:      record.CameraModel,
		Software:         record.Software,
		Make:             record.Make,
		CreatedAt:        record.CreatedAt,
	}
}

func toDomain(model CertificationRecordModel) domain.CertificationRecord {
	return domain.CertificationRecord{
		Fingerprint:      model.Fingerprint,
		StorageID:        model.StorageID,
		Signer:           model.Signer,
		CaptureLocation:  model.CaptureLocation,
		CaptureTimestamp: model.CaptureTimestamp,
		CameraModel:      model.CameraModel,
		Software:         model.Software,
		Make:             model.Make,
		CreatedAt:        model.CreatedAt,
	}
}
