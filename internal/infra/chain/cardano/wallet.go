package cardano

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/csera5/BlockchainTech/internal/domain"
)

const (
	// Dust threshold below which change is folded into the fee instead of
	// producing an output the ledger would reject.
	minChangeLovelace = 1_000_000

	// Upper bound used while sizing the transaction; real fees on this
	// chain are well below it.
	feeCeilingLovelace = 1_000_000

	// Size allowance for the single vkey witness added after fee
	// calculation.
	witnessSlackBytes = 112
)

// Wallet signs and submits certification transactions with a single payment
// key. It implements domain.Wallet.
type Wallet struct {
	key      ed25519.PrivateKey
	mainnet  bool
	client   *Client
	ttlSlots int64
}

func NewWallet(key ed25519.PrivateKey, mainnet bool, client *Client, ttlSlots int64) (*Wallet, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid signing key")
	}
	if client == nil {
		return nil, errors.New("blockfrost client is required")
	}
	if ttlSlots <= 0 {
		ttlSlots = 7200
	}
	return &Wallet{key: key, mainnet: mainnet, client: client, ttlSlots: ttlSlots}, nil
}

func (w *Wallet) DeriveAddress() (string, error) {
	return EnterpriseAddress(w.key.Public().(ed25519.PublicKey), w.mainnet)
}

// BuildTx selects inputs from the wallet's own address, attaches the
// metadata as auxiliary data, and balances the transaction with a change
// output back to the wallet.
func (w *Wallet) BuildTx(ctx context.Context, outputs []domain.Output, metadata domain.TxMetadata) (domain.UnsignedTx, error) {
	if len(outputs) == 0 {
		return domain.UnsignedTx{}, errors.New("at least one output is required")
	}

	ownAddress, err := w.DeriveAddress()
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	ownAddressRaw, err := addressBytes(ownAddress)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	auxRaw, err := encMode.Marshal(map[uint64]any(metadata))
	if err != nil {
		return domain.UnsignedTx{}, fmt.Errorf("encode metadata: %w", err)
	}
	auxHash := blake2b.Sum256(auxRaw)

	params, err := w.client.ProtocolParameters(ctx)
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	slot, err := w.client.LatestSlot(ctx)
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	utxos, err := w.client.UTxOs(ctx, ownAddress)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	var payTotal int64
	txOutputs := make([]txOutput, 0, len(outputs)+1)
	for _, out := range outputs {
		raw, err := addressBytes(out.Address)
		if err != nil {
			return domain.UnsignedTx{}, err
		}
		if out.Lovelace <= 0 {
			return domain.UnsignedTx{}, errors.New("output amount must be positive")
		}
		payTotal += out.Lovelace
		txOutputs = append(txOutputs, txOutput{Address: raw, Amount: uint64(out.Lovelace)})
	}

	inputs, total, err := selectInputs(utxos, payTotal+feeCeilingLovelace)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	ttl := uint64(slot + w.ttlSlots)

	// Size the transaction with the fee ceiling in place, then replace it
	// with the computed fee. Both encode to the same CBOR width, so the
	// measured size stays valid.
	candidate := txBody{
		Inputs:  inputs,
		Outputs: append(append([]txOutput(nil), txOutputs...), txOutput{Address: ownAddressRaw, Amount: uint64(total - payTotal)}),
		Fee:     feeCeilingLovelace,
		TTL:     ttl,
		AuxHash: auxHash[:],
	}
	candidateRaw, err := encodeBody(candidate)
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	candidateEnvelope, err := encodeEnvelope(candidateRaw, witnessSet{}, auxRaw)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	size := int64(len(candidateEnvelope)) + witnessSlackBytes
	fee := params.MinFeeA*size + params.MinFeeB
	change := total - payTotal - fee
	if change < 0 {
		return domain.UnsignedTx{}, domain.ErrInsufficientFunds
	}
	if change > 0 && change < minChangeLovelace {
		fee += change
		change = 0
	}

	body := txBody{
		Inputs:  inputs,
		Outputs: txOutputs,
		Fee:     uint64(fee),
		TTL:     ttl,
		AuxHash: auxHash[:],
	}
	if change > 0 {
		body.Outputs = append(body.Outputs, txOutput{Address: ownAddressRaw, Amount: uint64(change)})
	}

	bodyRaw, err := encodeBody(body)
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	_, idHex := txIDOf(bodyRaw)

	envelope, err := encodeEnvelope(bodyRaw, witnessSet{}, auxRaw)
	if err != nil {
		return domain.UnsignedTx{}, err
	}
	return domain.UnsignedTx{ID: idHex, Raw: envelope}, nil
}

// Sign recomputes the transaction id from the encoded body and attaches a
// single vkey witness.
func (w *Wallet) Sign(ctx context.Context, tx domain.UnsignedTx) (domain.SignedTx, error) {
	envelope, err := decodeEnvelope(tx.Raw)
	if err != nil {
		return domain.SignedTx{}, err
	}
	id, idHex := txIDOf(envelope.Body)

	signature := ed25519.Sign(w.key, id)
	witnesses := witnessSet{
		VKeys: []vkeyWitness{{
			VKey:      w.key.Public().(ed25519.PublicKey),
			Signature: signature,
		}},
	}

	signed, err := encodeEnvelope(envelope.Body, witnesses, envelope.Aux)
	if err != nil {
		return domain.SignedTx{}, err
	}
	return domain.SignedTx{ID: idHex, Raw: signed}, nil
}

func (w *Wallet) Submit(ctx context.Context, tx domain.SignedTx) (string, error) {
	return w.client.SubmitTx(ctx, tx.Raw)
}

// selectInputs picks plain-lovelace UTxOs largest first until the target is
// covered.
func selectInputs(utxos []UTxO, target int64) ([]txInput, int64, error) {
	candidates := make([]UTxO, 0, len(utxos))
	for _, utxo := range utxos {
		if utxo.OnlyLovelace() && utxo.Lovelace() > 0 {
			candidates = append(candidates, utxo)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Lovelace() > candidates[j].Lovelace()
	})

	var (
		inputs []txInput
		total  int64
	)
	for _, utxo := range candidates {
		hash, err := decodeTxHash(utxo.TxHash)
		if err != nil {
			return nil, 0, err
		}
		inputs = append(inputs, txInput{TxHash: hash, Index: utxo.OutputIndex})
		total += utxo.Lovelace()
		if total >= target {
			return inputs, total, nil
		}
	}
	return nil, 0, domain.ErrInsufficientFunds
}

var _ domain.Wallet = (*Wallet)(nil)
