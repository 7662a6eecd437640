package cardano

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Client is a minimal Blockfrost API client covering what transaction
// construction and the wallet utilities need.
type Client struct {
	baseURL   string
	projectID string
	httpDo    func(*http.Request) (*http.Response, error)
}

func NewClient(baseURL, projectID string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("blockfrost base url is required")
	}
	if projectID == "" {
		return nil, errors.New("blockfrost project id is required")
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		httpDo:    doer,
	}, nil
}

type ProtocolParameters struct {
	MinFeeA int64 `json:"min_fee_a"`
	MinFeeB int64 `json:"min_fee_b"`
}

type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type UTxO struct {
	TxHash      string   `json:"tx_hash"`
	OutputIndex uint32   `json:"output_index"`
	Amount      []Amount `json:"amount"`
}

// Lovelace returns the plain ADA quantity of the UTxO. Native-asset
// quantities are ignored; inputs carrying them are skipped by selection.
func (u UTxO) Lovelace() int64 {
	for _, amount := range u.Amount {
		if amount.Unit != "lovelace" {
			continue
		}
		quantity, err := strconv.ParseInt(amount.Quantity, 10, 64)
		if err != nil {
			return 0
		}
		return quantity
	}
	return 0
}

// OnlyLovelace reports whether the UTxO carries no native assets.
func (u UTxO) OnlyLovelace() bool {
	for _, amount := range u.Amount {
		if amount.Unit != "lovelace" {
			return false
		}
	}
	return true
}

func (c *Client) ProtocolParameters(ctx context.Context) (ProtocolParameters, error) {
	var params ProtocolParameters
	if err := c.getJSON(ctx, "/epochs/latest/parameters", &params); err != nil {
		return ProtocolParameters{}, err
	}
	if params.MinFeeA <= 0 || params.MinFeeB <= 0 {
		return ProtocolParameters{}, errors.New("blockfrost returned empty fee parameters")
	}
	return params, nil
}

func (c *Client) LatestSlot(ctx context.Context) (int64, error) {
	var block struct {
		Slot int64 `json:"slot"`
	}
	if err := c.getJSON(ctx, "/blocks/latest", &block); err != nil {
		return 0, err
	}
	if block.Slot <= 0 {
		return 0, errors.New("blockfrost returned no slot")
	}
	return block.Slot, nil
}

func (c *Client) UTxOs(ctx context.Context, address string) ([]UTxO, error) {
	var utxos []UTxO
	if err := c.getJSON(ctx, "/addresses/"+address+"/utxos", &utxos); err != nil {
		return nil, err
	}
	return utxos, nil
}

// SubmitTx posts a fully signed CBOR transaction and returns its hash.
func (c *Client) SubmitTx(ctx context.Context, raw []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx/submit", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/cbor")
	req.Header.Set("project_id", c.projectID)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var txHash string
	if err := json.Unmarshal(body, &txHash); err != nil {
		return "", fmt.Errorf("parse submit response: %w", err)
	}
	if txHash == "" {
		return "", errors.New("blockfrost returned empty tx hash")
	}
	return txHash, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("project_id", c.projectID)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpDo(req)
	if err != nil {
		return nil, fmt.Errorf("blockfrost request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blockfrost response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blockfrost status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
