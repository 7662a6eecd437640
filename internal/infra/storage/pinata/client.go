// Package pinata publishes normalized images to IPFS through the Pinata
// pinning API. The returned CIDv1 is derived from content, so re-publishing
// identical bytes is always safe and yields the same identifier.
package pinata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

type Client struct {
	baseURL   string
	apiKey    string
	secretKey string
	httpDo    func(*http.Request) (*http.Response, error)
}

func NewClient(baseURL, apiKey, secretKey string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("pinata base url is required")
	}
	if apiKey == "" || secretKey == "" {
		return nil, errors.New("pinata api credentials are required")
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
		httpDo:    doer,
	}, nil
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Publish streams r to pinFileToIPFS and returns the pinned CID.
func (c *Client) Publish(ctx context.Context, r io.Reader, size int64, name string) (string, error) {
	body, contentType := multipartBody(r, name)
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)

	resp, err := c.httpDo(req)
	if err != nil {
		return "", fmt.Errorf("pinata request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("pinata response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pinata status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var pinned pinResponse
	if err := json.Unmarshal(respBody, &pinned); err != nil {
		return "", fmt.Errorf("pinata response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", errors.New("pinata response missing IpfsHash")
	}
	return pinned.IpfsHash, nil
}

// multipartBody assembles the pin request as a streaming pipe so the
// artifact never has to be buffered in memory.
func multipartBody(r io.Reader, name string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		metadata, _ := json.Marshal(map[string]string{"name": name})
		if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
			pw.CloseWithError(err)
			return
		}
		options, _ := json.Marshal(map[string]int{"cidVersion": 1})
		if err := writer.WriteField("pinataOptions", string(options)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	return pr, writer.FormDataContentType()
}
