package pinata

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublish(t *testing.T) {
	var (
		gotAPIKey    string
		gotSecretKey string
		gotFile      []byte
		gotName      string
		gotMetadata  string
		gotOptions   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAPIKey = r.Header.Get("pinata_api_key")
		gotSecretKey = r.Header.Get("pinata_secret_api_key")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotFile, _ = io.ReadAll(file)
		gotName = header.Filename
		gotMetadata = r.FormValue("pinataMetadata")
		gotOptions = r.FormValue("pinataOptions")

		w.Write([]byte(`{"IpfsHash":"bafybeigtestcid"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "secret", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	content := []byte("normalized png bytes")
	cid, err := client.Publish(context.Background(), bytes.NewReader(content), int64(len(content)), "photo.png")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if cid != "bafybeigtestcid" {
		t.Fatalf("cid = %s", cid)
	}
	if gotAPIKey != "key" || gotSecretKey != "secret" {
		t.Fatalf("credentials not sent: %q %q", gotAPIKey, gotSecretKey)
	}
	if !bytes.Equal(gotFile, content) {
		t.Fatalf("file bytes differ")
	}
	if gotName != "photo.png" {
		t.Fatalf("name = %s", gotName)
	}
	if !strings.Contains(gotMetadata, `"name":"photo.png"`) {
		t.Fatalf("pinataMetadata = %s", gotMetadata)
	}
	if !strings.Contains(gotOptions, `"cidVersion":1`) {
		t.Fatalf("pinataOptions = %s", gotOptions)
	}
}

func TestPublish_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "secret", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Publish(context.Background(), strings.NewReader("x"), 1, "a.png"); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestPublish_MissingHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", "secret", server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Publish(context.Background(), strings.NewReader("x"), 1, "a.png"); err == nil {
		t.Fatalf("expected error for response without IpfsHash")
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "key", "secret", nil); err == nil {
		t.Fatalf("expected error for missing base url")
	}
	if _, err := NewClient("https://api.pinata.cloud", "", "secret", nil); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := NewClient("https://api.pinata.cloud", "key", "", nil); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
