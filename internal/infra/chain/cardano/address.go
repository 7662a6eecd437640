package cardano

import (
	"crypto/ed25519"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// Enterprise address header: key payment credential, no staking part.
const (
	addressHeaderEnterprise = 0x60
	networkIDMainnet        = 0x01
	paymentKeyHashSize      = 28
)

// EnterpriseAddress derives the bech32 enterprise address for a payment
// verification key: header byte, then the blake2b-224 hash of the key.
func EnterpriseAddress(pub ed25519.PublicKey, mainnet bool) (string, error) {
	hasher, err := blake2b.New(paymentKeyHashSize, nil)
	if err != nil {
		return "", fmt.Errorf("init key hash: %w", err)
	}
	hasher.Write(pub)
	keyHash := hasher.Sum(nil)

	header := byte(addressHeaderEnterprise)
	hrp := "addr_test"
	if mainnet {
		header |= networkIDMainnet
		hrp = "addr"
	}

	payload := append([]byte{header}, keyHash...)
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address payload: %w", err)
	}
	encoded, err := bech32.Encode(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	return encoded, nil
}

// addressBytes decodes a bech32 address back to its raw payload for use in
// transaction outputs.
func addressBytes(address string) ([]byte, error) {
	_, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("decode address payload: %w", err)
	}
	return raw, nil
}
