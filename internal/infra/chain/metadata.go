// Package chain assembles on-chain certification metadata and drives the
// wallet through the build/sign/submit sequence with stage-tagged errors.
package chain

import (
	"time"
	"unicode/utf8"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// MetadataLabelNFT is the standard transaction metadata label for NFT
// records (CIP-25).
const MetadataLabelNFT uint64 = 721

// MaxFieldBytes is the ledger's per-field ceiling for metadata strings. One
// byte is reserved below the 64-byte chain limit so a string of exactly 64
// encoded bytes truncates to at most 63.
const MaxFieldBytes = 63

// Truncate returns the longest prefix of s that encodes to at most maxBytes
// bytes without splitting a multi-byte character. Strings already within
// budget come back unchanged.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// TokenMetadata builds the nested CIP-25 record for a certification. Every
// free-text field passes through Truncate; the fingerprint is a fixed-length
// hex value and is attached as-is.
func TokenMetadata(policyID, assetName string, record domain.CertificationRecord) domain.TxMetadata {
	timestamp := record.CreatedAt.UTC().Format(time.RFC3339)
	if record.CaptureTimestamp != nil && *record.CaptureTimestamp != "" {
		timestamp = *record.CaptureTimestamp
	}

	token := map[string]any{
		"name":        Truncate(assetName, MaxFieldBytes),
		"image":       Truncate("ipfs://"+record.StorageID, MaxFieldBytes),
		"mediaType":   "image/png",
		"description": "Authenticated image",
		"hash":        record.Fingerprint,
		"signer":      Truncate(record.Signer, MaxFieldBytes),
		"location":    Truncate(record.CaptureLocation, MaxFieldBytes),
		"timestamp":   Truncate(timestamp, MaxFieldBytes),
		"cameraModel": Truncate(record.CameraModel, MaxFieldBytes),
		"software":    Truncate(record.Software, MaxFieldBytes),
		"make":        Truncate(record.Make, MaxFieldBytes),
	}

	return domain.TxMetadata{
		MetadataLabelNFT: map[string]any{
			policyID: map[string]any{
				assetName: token,
			},
		},
	}
}
