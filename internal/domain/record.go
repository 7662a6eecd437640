package domain

import (
	"strconv"
	"time"
)

// UnknownField is recorded for capture fields the source image did not carry.
const UnknownField = "Unknown"

// CertificationRecord is the value stored per fingerprint. All fields are
// immutable once written; a fingerprint maps to at most one record.
type CertificationRecord struct {
	Fingerprint      string
	StorageID        string
	Signer           string
	CaptureLocation  string
	CaptureTimestamp *string
	CameraModel      string
	Software         string
	Make             string
	CreatedAt        time.Time
}

// CaptureMetadata holds fields extracted from the uploaded image. Every
// field is optional; the extractor reports only what the container carried.
type CaptureMetadata struct {
	Latitude    *float64
	Longitude   *float64
	CaptureTime string
	CameraModel string
	Software    string
	Make        string
}

// Location renders GPS coordinates as "lat, long", or UnknownField when the
// image carried no position.
func (m CaptureMetadata) Location() string {
	if m.Latitude == nil || m.Longitude == nil {
		return UnknownField
	}
	return strconv.FormatFloat(*m.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(*m.Longitude, 'f', -1, 64)
}

// NewRecord builds a certification record from capture metadata, filling
// absent fields the same way the certification metadata does on chain.
func NewRecord(fingerprint, storageID, signer string, capture CaptureMetadata, now time.Time) CertificationRecord {
	record := CertificationRecord{
		Fingerprint:     fingerprint,
		StorageID:       storageID,
		Signer:          signer,
		CaptureLocation: capture.Location(),
		CameraModel:     orUnknown(capture.CameraModel),
		Software:        orUnknown(capture.Software),
		Make:            orUnknown(capture.Make),
		CreatedAt:       now.UTC(),
	}
	if capture.CaptureTime != "" {
		ts := capture.CaptureTime
		record.CaptureTimestamp = &ts
	}
	return record
}

func orUnknown(v string) string {
	if v == "" {
		return UnknownField
	}
	return v
}
