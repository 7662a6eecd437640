// Package exifmeta extracts capture metadata from the original upload. The
// fields mirror what the certification records on chain: GPS position,
// DateTimeOriginal, camera model, software and make.
package exifmeta

import (
	"io"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/csera5/BlockchainTech/internal/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract parses EXIF out of r. Images without EXIF (or with a mangled
// block) return a zero CaptureMetadata and the decode error; callers treat
// missing metadata as non-fatal.
func (e *Extractor) Extract(r io.Reader) (domain.CaptureMetadata, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return domain.CaptureMetadata{}, err
	}

	var meta domain.CaptureMetadata
	if lat, long, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}
	meta.CaptureTime = tagString(x, exif.DateTimeOriginal)
	meta.CameraModel = tagString(x, exif.Model)
	meta.Software = tagString(x, exif.Software)
	meta.Make = tagString(x, exif.Make)
	return meta, nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return value
}

var _ domain.Extractor = (*Extractor)(nil)
