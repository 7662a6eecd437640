package db

import "time"

type CertificationRecordModel struct {
	Fingerprint      string    `gorm:"primaryKey;size:64"`
	StorageID        string    `gorm:"not null"`
	Signer           string    `gorm:"index;not null"`
	CaptureLocation  string    `gorm:"not null"`
	CaptureTimestamp *string
	CameraModel      string    `gorm:"not null"`
	Software         string    `gorm:"not null"`
	Make             string    `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
}

func (CertificationRecordModel) TableName() string {
	return "certification_records"
}
