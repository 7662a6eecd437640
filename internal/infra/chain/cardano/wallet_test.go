package cardano

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/csera5/BlockchainTech/internal/domain"
)

type blockfrostStub struct {
	utxos []UTxO

	submitBody        []byte
	submitContentType string
	submitProjectID   string
}

func (b *blockfrostStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/epochs/latest/parameters", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ProtocolParameters{MinFeeA: 44, MinFeeB: 155381})
	})
	mux.HandleFunc("/blocks/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"slot": 40_000_000})
	})
	mux.HandleFunc("/addresses/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.utxos)
	})
	mux.HandleFunc("/tx/submit", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.submitBody = body
		b.submitContentType = r.Header.Get("Content-Type")
		b.submitProjectID = r.Header.Get("project_id")
		json.NewEncoder(w).Encode(strings.Repeat("cd", 32))
	})
	return mux
}

func lovelaceUTxO(txHash string, index uint32, quantity string) UTxO {
	return UTxO{
		TxHash:      txHash,
		OutputIndex: index,
		Amount:      []Amount{{Unit: "lovelace", Quantity: quantity}},
	}
}

func newTestWallet(t *testing.T, stub *blockfrostStub) (*Wallet, func()) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	client, err := NewClient(server.URL, "testproject", server.Client())
	if err != nil {
		server.Close()
		t.Fatalf("new client: %v", err)
	}
	wallet, err := NewWallet(ed25519.NewKeyFromSeed(testSeed()), false, client, 7200)
	if err != nil {
		server.Close()
		t.Fatalf("new wallet: %v", err)
	}
	return wallet, server.Close
}

func testMetadata() domain.TxMetadata {
	return domain.TxMetadata{
		721: map[string]any{
			"policy": map[string]any{
				"asset": map[string]any{"name": "ImageAuthNFT"},
			},
		},
	}
}

func decodeBody(t *testing.T, raw []byte) txBody {
	t.Helper()
	envelope, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var body txBody
	if err := cbor.Unmarshal(envelope.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWallet_BuildTxBalances(t *testing.T) {
	stub := &blockfrostStub{utxos: []UTxO{
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "10000000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	address, err := wallet.DeriveAddress()
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	unsigned, err := wallet.BuildTx(context.Background(), []domain.Output{{Address: address, Lovelace: 2_000_000}}, testMetadata())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(unsigned.ID) != 64 {
		t.Fatalf("tx id = %q", unsigned.ID)
	}
	if _, err := hex.DecodeString(unsigned.ID); err != nil {
		t.Fatalf("tx id is not hex: %v", err)
	}

	body := decodeBody(t, unsigned.Raw)
	if len(body.Inputs) != 1 {
		t.Fatalf("inputs = %d", len(body.Inputs))
	}
	if len(body.Outputs) != 2 {
		t.Fatalf("outputs = %d, want payment + change", len(body.Outputs))
	}
	if body.Outputs[0].Amount != 2_000_000 {
		t.Fatalf("payment = %d", body.Outputs[0].Amount)
	}

	// Inputs fully account for outputs plus fee.
	consumed := body.Outputs[0].Amount + body.Outputs[1].Amount + body.Fee
	if consumed != 10_000_000 {
		t.Fatalf("tx does not balance: outputs+fee = %d", consumed)
	}
	if body.Fee < 155_381 || body.Fee > feeCeilingLovelace {
		t.Fatalf("fee out of range: %d", body.Fee)
	}
	if body.TTL != 40_000_000+7200 {
		t.Fatalf("ttl = %d", body.TTL)
	}
	if len(body.AuxHash) != 32 {
		t.Fatalf("aux hash = %d bytes", len(body.AuxHash))
	}
}

func TestWallet_BuildTxFoldsDustChange(t *testing.T) {
	stub := &blockfrostStub{utxos: []UTxO{
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "3100000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	address, _ := wallet.DeriveAddress()
	unsigned, err := wallet.BuildTx(context.Background(), []domain.Output{{Address: address, Lovelace: 2_000_000}}, testMetadata())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	body := decodeBody(t, unsigned.Raw)
	if len(body.Outputs) != 1 {
		t.Fatalf("dust change must be folded into the fee, outputs = %d", len(body.Outputs))
	}
	if body.Outputs[0].Amount+body.Fee != 3_100_000 {
		t.Fatalf("tx does not balance: %d + %d", body.Outputs[0].Amount, body.Fee)
	}
}

func TestWallet_BuildTxSkipsNativeAssetUTxOs(t *testing.T) {
	nativeAsset := UTxO{
		TxHash:      strings.Repeat("ff", 32),
		OutputIndex: 1,
		Amount: []Amount{
			{Unit: "lovelace", Quantity: "50000000"},
			{Unit: "1d82a7b3496d616765417574684e4654", Quantity: "1"},
		},
	}
	stub := &blockfrostStub{utxos: []UTxO{
		nativeAsset,
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "10000000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	address, _ := wallet.DeriveAddress()
	unsigned, err := wallet.BuildTx(context.Background(), []domain.Output{{Address: address, Lovelace: 2_000_000}}, testMetadata())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	body := decodeBody(t, unsigned.Raw)
	wantHash, _ := hex.DecodeString(strings.Repeat("ab", 32))
	if len(body.Inputs) != 1 || !strings.EqualFold(hex.EncodeToString(body.Inputs[0].TxHash), hex.EncodeToString(wantHash)) {
		t.Fatalf("selection must skip native-asset utxos: %+v", body.Inputs)
	}
}

func TestWallet_BuildTxInsufficientFunds(t *testing.T) {
	stub := &blockfrostStub{utxos: []UTxO{
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "1000000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	address, _ := wallet.DeriveAddress()
	_, err := wallet.BuildTx(context.Background(), []domain.Output{{Address: address, Lovelace: 2_000_000}}, testMetadata())
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestWallet_SignAttachesValidWitness(t *testing.T) {
	stub := &blockfrostStub{utxos: []UTxO{
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "10000000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	address, _ := wallet.DeriveAddress()
	unsigned, err := wallet.BuildTx(context.Background(), []domain.Output{{Address: address, Lovelace: 2_000_000}}, testMetadata())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	signed, err := wallet.Sign(context.Background(), unsigned)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signed.ID != unsigned.ID {
		t.Fatalf("signing must not change the tx id")
	}

	envelope, err := decodeEnvelope(signed.Raw)
	if err != nil {
		t.Fatalf("decode signed: %v", err)
	}
	if len(envelope.Witnesses.VKeys) != 1 {
		t.Fatalf("witnesses = %d", len(envelope.Witnesses.VKeys))
	}
	witness := envelope.Witnesses.VKeys[0]
	id, _ := txIDOf(envelope.Body)
	if !ed25519.Verify(witness.VKey, id, witness.Signature) {
		t.Fatalf("witness signature does not verify over the tx id")
	}
}

func TestWallet_Submit(t *testing.T) {
	stub := &blockfrostStub{utxos: []UTxO{
		lovelaceUTxO(strings.Repeat("ab", 32), 0, "10000000"),
	}}
	wallet, done := newTestWallet(t, stub)
	defer done()

	txHash, err := wallet.Submit(context.Background(), domain.SignedTx{ID: "id", Raw: []byte{0x84, 0x00}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if txHash != strings.Repeat("cd", 32) {
		t.Fatalf("tx hash = %s", txHash)
	}
	if stub.submitContentType != "application/cbor" {
		t.Fatalf("content type = %s", stub.submitContentType)
	}
	if stub.submitProjectID != "testproject" {
		t.Fatalf("project_id header = %s", stub.submitProjectID)
	}
}
