package cardano

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_SendsProjectID(t *testing.T) {
	var gotProjectID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProjectID = r.Header.Get("project_id")
		w.Write([]byte(`{"min_fee_a":44,"min_fee_b":155381}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	params, err := client.ProtocolParameters(context.Background())
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if gotProjectID != "secret" {
		t.Fatalf("project_id = %q", gotProjectID)
	}
	if params.MinFeeA != 44 || params.MinFeeB != 155381 {
		t.Fatalf("params = %+v", params)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"project over limit"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.LatestSlot(context.Background()); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestClient_RequiresConfig(t *testing.T) {
	if _, err := NewClient("", "key", nil); err == nil {
		t.Fatalf("expected error for missing base url")
	}
	if _, err := NewClient("https://example.test", "", nil); err == nil {
		t.Fatalf("expected error for missing project id")
	}
}

func TestUTxO_LovelaceHelpers(t *testing.T) {
	plain := UTxO{Amount: []Amount{{Unit: "lovelace", Quantity: "1500000"}}}
	if plain.Lovelace() != 1_500_000 || !plain.OnlyLovelace() {
		t.Fatalf("plain utxo misread: %d %v", plain.Lovelace(), plain.OnlyLovelace())
	}

	withAsset := UTxO{Amount: []Amount{
		{Unit: "lovelace", Quantity: "2000000"},
		{Unit: "deadbeefderivedasset", Quantity: "1"},
	}}
	if withAsset.Lovelace() != 2_000_000 {
		t.Fatalf("lovelace = %d", withAsset.Lovelace())
	}
	if withAsset.OnlyLovelace() {
		t.Fatalf("native asset utxo reported as plain")
	}
}
