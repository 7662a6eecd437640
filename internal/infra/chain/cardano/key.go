// Package cardano implements the wallet/ledger collaborator for the Cardano
// chain: bech32 signing keys, enterprise address derivation, transaction
// construction with CIP-25 auxiliary data, and submission via Blockfrost.
package cardano

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

const signingKeyHRP = "ed25519_sk"

// ParseSigningKey decodes a bech32 ed25519_sk payment signing key.
func ParseSigningKey(encoded string) (ed25519.PrivateKey, error) {
	hrp, data, err := bech32.Decode(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	if hrp != signingKeyHRP {
		return nil, fmt.Errorf("unexpected key prefix %q, want %q", hrp, signingKeyHRP)
	}
	seed, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("decode signing key payload: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key payload is %d bytes, want %d (extended keys are not supported)", len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// LoadSigningKey reads a signing key from the literal value when set,
// otherwise from the key file.
func LoadSigningKey(literal, file string) (ed25519.PrivateKey, error) {
	if literal != "" {
		return ParseSigningKey(literal)
	}
	if file == "" {
		return nil, errors.New("no signing key configured")
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read signing key file: %w", err)
	}
	return ParseSigningKey(string(raw))
}
