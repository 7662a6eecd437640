package chain

import (
	"context"
	"errors"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// Certifier anchors a certification record on the ledger: it assembles the
// CIP-25 metadata, builds a transaction carrying it plus a minimal
// self-payment, signs, and submits. Each failure is tagged with the stage
// it interrupted.
type Certifier struct {
	Wallet          domain.Wallet
	PolicyID        string
	AssetName       string
	PaymentLovelace int64
}

func NewCertifier(wallet domain.Wallet, policyID, assetName string, paymentLovelace int64) (*Certifier, error) {
	if wallet == nil {
		return nil, errors.New("wallet is required")
	}
	if policyID == "" {
		return nil, errors.New("policy id is required")
	}
	if assetName == "" {
		return nil, errors.New("asset name is required")
	}
	if paymentLovelace <= 0 {
		paymentLovelace = 2_000_000
	}
	return &Certifier{
		Wallet:          wallet,
		PolicyID:        policyID,
		AssetName:       assetName,
		PaymentLovelace: paymentLovelace,
	}, nil
}

// Certify runs assemble, build, sign and submit. Signing happens only after
// a successful local build, so no partial on-chain submission can occur.
func (c *Certifier) Certify(ctx context.Context, record domain.CertificationRecord, onStage func(domain.Stage)) (string, error) {
	if onStage == nil {
		onStage = func(domain.Stage) {}
	}

	metadata := TokenMetadata(c.PolicyID, c.AssetName, record)

	address, err := c.Wallet.DeriveAddress()
	if err != nil {
		return "", domain.FailedAt(domain.StageTxBuilt, err)
	}

	// The self-payment is a certification anchor, not a value transfer.
	outputs := []domain.Output{{Address: address, Lovelace: c.PaymentLovelace}}

	unsigned, err := c.Wallet.BuildTx(ctx, outputs, metadata)
	if err != nil {
		return "", domain.FailedAt(domain.StageTxBuilt, err)
	}
	onStage(domain.StageTxBuilt)

	signed, err := c.Wallet.Sign(ctx, unsigned)
	if err != nil {
		return "", domain.FailedAt(domain.StageTxSigned, err)
	}
	onStage(domain.StageTxSigned)

	txID, err := c.Wallet.Submit(ctx, signed)
	if err != nil {
		return "", domain.FailedAt(domain.StageSubmitted, err)
	}
	return txID, nil
}
