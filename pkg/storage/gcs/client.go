package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Client wraps the storage SDK with the bucket and expiry policy we use.
type Client struct {
	raw            *storage.Client
	defaultBucket  string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SignedURLIssuer is the surface media handling needs.
type SignedURLIssuer interface {
	SignedUploadURL(object, contentType string) (string, error)
	SignedDownloadURL(object string) (string, error)
	ObjectURL(object string) string
}

// NewClient builds a GCS client bound to the configured bucket.
func NewClient(ctx context.Context, cfg config.GCSConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	raw, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	client := &Client{
		raw:            raw,
		defaultBucket:  cfg.BucketName,
		uploadExpiry:   cfg.UploadURLExpiry,
		downloadExpiry: cfg.DownloadURLExpiry,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}

	return client, nil
}

// DefaultBucket reports the bucket the client signs URLs for.
func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Ping verifies the bucket is reachable with the ambient credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("gcs client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := c.raw.Bucket(c.defaultBucket).Attrs(ctx)
	return err
}

// SignedUploadURL issues a V4 signed PUT URL for the object.
func (c *Client) SignedUploadURL(object, contentType string) (string, error) {
	if c == nil || c.raw == nil {
		return "", errors.New("gcs client not initialized")
	}
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodPut,
		Expires: time.Now().Add(c.uploadExpiry),
	}
	if contentType != "" {
		opts.ContentType = contentType
	}
	return c.raw.Bucket(c.defaultBucket).SignedURL(object, opts)
}

// SignedDownloadURL issues a V4 signed GET URL for the object.
func (c *Client) SignedDownloadURL(object string) (string, error) {
	if c == nil || c.raw == nil {
		return "", errors.New("gcs client not initialized")
	}
	return c.raw.Bucket(c.defaultBucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(c.downloadExpiry),
	})
}

// ObjectURL returns the public URL for an object in the default bucket.
func (c *Client) ObjectURL(object string) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.defaultBucket, object)
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
