package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	nanoid "github.com/matoous/go-nanoid/v2"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewExportKey returns a fresh object key under prefix, e.g. exports/k3f9....csv.
func NewExportKey(prefix string) (string, error) {
	id, err := nanoid.Generate(keyAlphabet, 16)
	if err != nil {
		return "", fmt.Errorf("generate export key: %w", err)
	}
	return prefix + id + ".csv", nil
}

// S3Destination writes export files to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
	}, nil
}

// Write uploads data as a CSV object and returns its s3:// location.
func (d *S3Destination) Write(ctx context.Context, key string, data []byte) (string, error) {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return "s3://" + d.bucket + "/" + key, nil
}
