// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage resolves video content items to playable URLs. Content
// stored as an object key in the media bucket is served through a
// pre-signed GET URL; absolute http(s) URLs are passed through.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrEmptyKey is returned when a content item has no media reference.
var ErrEmptyKey = errors.New("storage: empty object key")

// DefaultPresignTTL is used when Options.PresignTTL is zero.
const DefaultPresignTTL = 15 * time.Minute

// Options configures New. Endpoint and both keys are required for a client.
type Options struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PresignTTL time.Duration
}

// Client presigns media objects in a single bucket.
type Client struct {
	presigner *s3.PresignClient
	bucket    string
	ttl       time.Duration
}

// New creates an S3 client with path-style addressing so any S3-compatible
// endpoint works. Returns (nil, nil) if endpoint or credentials are empty,
// allowing the app to start without storage.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, nil
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = DefaultPresignTTL
	}

	s3Client := s3.New(s3.Options{
		Region:       opts.Region,
		BaseEndpoint: aws.String(strings.TrimRight(opts.Endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		presigner: s3.NewPresignClient(s3Client),
		bucket:    opts.Bucket,
		ttl:       opts.PresignTTL,
	}, nil
}

// Bucket returns the media bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// PresignedURL generates a pre-signed GET URL for key, valid for the
// configured TTL.
func (c *Client) PresignedURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.bucket, key, err)
	}
	return req.URL, nil
}

// MediaURL resolves a video content reference. Absolute http(s) URLs are
// returned unchanged. "s3://<bucket>/<key>" for the media bucket and bare
// keys are presigned. A nil client returns absolute URLs only.
func (c *Client) MediaURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if IsAbsoluteURL(ref) {
		return ref, nil
	}
	if c == nil {
		return "", fmt.Errorf("storage: not configured for %q", ref)
	}
	if rest, ok := strings.CutPrefix(ref, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket != c.bucket {
			return "", fmt.Errorf("storage: unknown bucket %q", bucket)
		}
		ref = key
	}
	return c.PresignedURL(ctx, ref)
}

// IsAbsoluteURL reports whether ref is an http or https URL.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}
