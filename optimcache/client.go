// Package optimcache implements the remote optimization cache: an
// S3-compatible content-addressable store of already-encoded assets, keyed
// {assetKind}/{qualityTier}/{videoId} and tagged with the encoder version
// that produced them.
//
// The version tag exists because encoding presets change between releases;
// a cached rendition is usable only when its tag matches the caller's
// current encoder version, unless the run explicitly accepts any version.
package optimcache

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// metadata key carrying the encoder version; S3 canonicalizes user metadata
// keys, so lookups use the canonical form.
const versionMetaKey = "Encoder-Version"

// Client talks to one bucket of an S3-compatible store.
type Client struct {
	s3      *minio.Client
	bucket  string
	log     logrus.FieldLogger
	timeout time.Duration
}

// Endpoint describes a parsed cache URL.
type Endpoint struct {
	Host      string
	KeyID     string
	SecretKey string
	Bucket    string
	Secure    bool
}

// ParseURL parses a cache URL of the form
// https://host/?keyId=...&secretAccessKey=...&bucketName=... .
func ParseURL(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("optimcache: parse url: %w", err)
	}
	q := u.Query()
	ep := Endpoint{
		Host:      u.Host,
		KeyID:     q.Get("keyId"),
		SecretKey: q.Get("secretAccessKey"),
		Bucket:    q.Get("bucketName"),
		Secure:    u.Scheme != "http",
	}
	if ep.Host == "" {
		return Endpoint{}, fmt.Errorf("optimcache: url %q has no host", raw)
	}
	if ep.KeyID == "" || ep.SecretKey == "" {
		return Endpoint{}, fmt.Errorf("optimcache: url is missing keyId/secretAccessKey")
	}
	if ep.Bucket == "" {
		return Endpoint{}, fmt.Errorf("optimcache: url is missing bucketName")
	}
	return ep, nil
}

// New builds a cache client from a cache URL.
func New(rawURL string, log logrus.FieldLogger, timeout time.Duration) (*Client, error) {
	ep, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	s3, err := minio.New(ep.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(ep.KeyID, ep.SecretKey, ""),
		Secure: ep.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("optimcache: connect %s: %w", ep.Host, err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{s3: s3, bucket: ep.Bucket, log: log, timeout: timeout}, nil
}

// CredentialsOK verifies the bucket is reachable with the given credentials.
func (c *Client) CredentialsOK(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ok, err := c.s3.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("optimcache: check bucket %q: %w", c.bucket, err)
	}
	if !ok {
		return fmt.Errorf("optimcache: bucket %q does not exist", c.bucket)
	}
	return nil
}

// HasUsable reports whether an object exists at key and carries an
// acceptable encoder version tag.
func (c *Client) HasUsable(ctx context.Context, key, encoderVersion string, useAnyVersion bool) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	info, err := c.s3.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return false
	}
	return usableVersion(info.UserMetadata[versionMetaKey], encoderVersion, useAnyVersion)
}

func usableVersion(stored, want string, useAnyVersion bool) bool {
	if useAnyVersion {
		return true
	}
	return stored != "" && stored == want
}

// Fetch downloads the object at key to destPath, creating parent
// directories as needed.
func (c *Client) Fetch(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("optimcache: prepare %s: %w", destPath, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.s3.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("optimcache: fetch %s: %w", key, err)
	}
	c.log.WithFields(logrus.Fields{"key": key, "path": destPath}).Info("downloaded from cache")
	return nil
}

// Put uploads srcPath to key, tagging it with the encoder version.
func (c *Client) Put(ctx context.Context, key, srcPath, encoderVersion string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err := c.s3.FPutObject(ctx, c.bucket, key, srcPath, minio.PutObjectOptions{
		UserMetadata: map[string]string{versionMetaKey: encoderVersion},
	})
	if err != nil {
		return fmt.Errorf("optimcache: upload %s: %w", key, err)
	}
	c.log.WithFields(logrus.Fields{"key": key, "path": srcPath}).Info("uploaded to cache")
	return nil
}
