package client

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Client wraps the S3 client for Cloudflare R2, where rendered audio
// clips can be published instead of the local cache directory.
type R2Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewR2Client creates a new Cloudflare R2 client.
func NewR2Client(ctx context.Context, accessKeyID, secretKey, endpoint, bucketName, publicURL string) (*R2Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Client{
		s3Client:  s3Client,
		bucket:    bucketName,
		publicURL: publicURL,
	}, nil
}

// Upload stores an object in the bucket and returns its public URL.
func (c *R2Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", c.publicURL, key), nil
}

// PublicURL returns the configured public URL.
func (c *R2Client) PublicURL() string {
	return c.publicURL
}
