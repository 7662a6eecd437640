package cardano

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Transaction body field keys per the Cardano ledger CDDL.
type txBody struct {
	Inputs  []txInput  `cbor:"0,keyasint"`
	Outputs []txOutput `cbor:"1,keyasint"`
	Fee     uint64     `cbor:"2,keyasint"`
	TTL     uint64     `cbor:"3,keyasint,omitempty"`
	AuxHash []byte     `cbor:"7,keyasint,omitempty"`
}

type txInput struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

type txOutput struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Amount  uint64
}

type vkeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

type witnessSet struct {
	VKeys []vkeyWitness `cbor:"0,keyasint,omitempty"`
}

// txEnvelope is the signed transaction wire format:
// [body, witness_set, is_valid, auxiliary_data].
type txEnvelope struct {
	_         struct{} `cbor:",toarray"`
	Body      cbor.RawMessage
	Witnesses witnessSet
	IsValid   bool
	Aux       cbor.RawMessage
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}

func encodeBody(body txBody) (cbor.RawMessage, error) {
	raw, err := encMode.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode tx body: %w", err)
	}
	return raw, nil
}

func encodeEnvelope(body cbor.RawMessage, witnesses witnessSet, aux cbor.RawMessage) ([]byte, error) {
	raw, err := encMode.Marshal(txEnvelope{
		Body:      body,
		Witnesses: witnesses,
		IsValid:   true,
		Aux:       aux,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tx: %w", err)
	}
	return raw, nil
}

func decodeEnvelope(raw []byte) (txEnvelope, error) {
	var envelope txEnvelope
	if err := cbor.Unmarshal(raw, &envelope); err != nil {
		return txEnvelope{}, fmt.Errorf("decode tx: %w", err)
	}
	return envelope, nil
}

// txIDOf is the blake2b-256 hash of the encoded body; signatures commit to
// this value.
func txIDOf(body cbor.RawMessage) ([]byte, string) {
	sum := blake2b.Sum256(body)
	return sum[:], hex.EncodeToString(sum[:])
}

func decodeTxHash(encoded string) ([]byte, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode tx hash: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("tx hash is %d bytes, want 32", len(raw))
	}
	return raw, nil
}
