package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"messenger-api/config/common"
)

// ObjectStore keeps message attachments.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL reports the object key behind a URL this store produced.
	KeyFromURL(url string) (string, bool)
}

// MessagePrefix holds every message attachment; only this prefix is readable
// without credentials.
const MessagePrefix = "messages/"

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/%s*"]}]}`

// MinioStore hands out stable object URLs. Stored message images must keep
// loading for the lifetime of the message, so URLs never carry an expiry.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to MinIO and makes sure the bucket exists. Without
// MINIO_PUBLIC_URL the bucket itself serves attachments, so the message
// prefix is opened for anonymous reads.
func NewMinioStore(cfg common.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = bucketURL(cfg)
		policy := fmt.Sprintf(publicReadPolicy, cfg.Bucket, MessagePrefix)
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, policy); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}
	return newMinioStore(client, cfg.Bucket, baseURL), nil
}

func newMinioStore(client *minio.Client, bucket, baseURL string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func bucketURL(cfg common.MinioConfig) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (m *MinioStore) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	return m.baseURL + "/" + key, nil
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// KeyFromURL accepts the stable URLs handed out by URL as well as
// path-style presigned URLs pointing at the same endpoint and bucket.
func (m *MinioStore) KeyFromURL(raw string) (string, bool) {
	if key, ok := strings.CutPrefix(raw, m.baseURL+"/"); ok {
		key, _, _ = strings.Cut(key, "?")
		return key, key != ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != m.client.EndpointURL().Host {
		return "", false
	}
	key, ok := strings.CutPrefix(parsed.Path, "/"+m.bucket+"/")
	return key, ok && key != ""
}
