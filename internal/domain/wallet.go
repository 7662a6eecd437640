package domain

import "context"

// TxMetadata is the structured blob attached to a certification transaction
// under a numeric label. Values are whatever the ledger's metadata encoding
// accepts: strings, integers, nested maps and lists.
type TxMetadata map[uint64]any

// Output is a payment carried by the certification transaction.
type Output struct {
	Address  string
	Lovelace int64
}

// UnsignedTx is a built but unsigned transaction. Raw holds the adapter's
// wire encoding; ID is the transaction identifier the signature commits to.
type UnsignedTx struct {
	ID  string
	Raw []byte
}

// SignedTx is a fully witnessed transaction ready for submission.
type SignedTx struct {
	ID  string
	Raw []byte
}

// Wallet is the narrow signing/ledger capability the certification builder
// consumes. Concrete adapters own protocol encoding and network access;
// test doubles simulate submission.
type Wallet interface {
	// DeriveAddress returns the wallet's own payment address.
	DeriveAddress() (string, error)
	// BuildTx constructs a transaction paying the given outputs and
	// attaching metadata under its standard numeric label.
	BuildTx(ctx context.Context, outputs []Output, metadata TxMetadata) (UnsignedTx, error)
	Sign(ctx context.Context, tx UnsignedTx) (SignedTx, error)
	Submit(ctx context.Context, tx SignedTx) (string, error)
}
