package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options carries the settings needed to reach an S3-compatible
// backend (AWS S3 proper or MinIO-style deployments via BaseEndpoint).
type S3Options struct {
	User         string // MINIO_ROOT_USER / access key id
	Password     string // MINIO_ROOT_PASSWORD / secret access key
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements Store over the AWS SDK v2 S3 client.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds the S3 client with static credentials and an optional
// base endpoint override.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.User,
			opts.Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config error: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: opts.Bucket}, nil
}

// Put uploads data under key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}

// Get downloads the object stored under key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("s3 get error: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read error: %w", err)
	}
	return data, nil
}

// Delete removes the object stored under key. Deleting a missing key is
// not an error, matching S3 semantics.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete error: %w", err)
	}
	return nil
}
