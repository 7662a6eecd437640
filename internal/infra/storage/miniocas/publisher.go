// Package miniocas is a self-hosted content-addressed publisher backed by an
// S3-compatible bucket. The content identifier is a CIDv1 (raw codec,
// sha2-256 multihash) computed locally, and doubles as the object key, so
// republishing identical bytes lands on the same object.
package miniocas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/multiformats/go-multihash"
)

type Publisher struct {
	client *minio.Client
	bucket string
}

func NewPublisher(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Publisher, error) {
	if endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &Publisher{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, r io.Reader, size int64, name string) (string, error) {
	// Normalized artifacts are small fixed-resolution PNGs; buffering to
	// compute the identifier before upload is fine here.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	id, err := ContentID(data)
	if err != nil {
		return "", err
	}

	// Content addressing: if the object already exists the bytes are the
	// same and the upload can be skipped.
	if _, err := p.client.StatObject(ctx, p.bucket, id, minio.StatObjectOptions{}); err == nil {
		return id, nil
	}

	_, err = p.client.PutObject(ctx, p.bucket, id, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/png",
		UserMetadata: map[string]string{
			"original-name": name,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return id, nil
}

// ContentID computes the CIDv1 (raw, sha2-256) for data.
func ContentID(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
