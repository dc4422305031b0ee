// Package snapshot periodically exports the full revision history to
// S3-compatible object storage as JSON, for off-system audit trails.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/revkeeper/internal/logging"
)

// S3Client is the slice of the S3 API the exporter needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Source produces the rows to dump, typically a repository's ListAll.
type Source func(ctx context.Context) (any, error)

// Options configures access to the object storage backend.
type Options struct {
	RootUser     string
	RootPassword string
	Region       string
	BaseEndpoint string
	Bucket       string
	Prefix       string
}

// NewS3Client builds an S3 client for the configured backend (MinIO or AWS).
func NewS3Client(ctx context.Context, opts Options) (S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.RootUser,
			opts.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return client, nil
}

// Exporter uploads JSON dumps of a source to one bucket.
type Exporter struct {
	client  S3Client
	bucket  string
	prefix  string
	source  Source
	log     logging.Logger
	now     func() time.Time
	backoff func() retry.Backoff
}

func NewExporter(client S3Client, opts Options, source Source, log logging.Logger) *Exporter {
	return &Exporter{
		client: client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		source: source,
		log:    log.With("module", "snapshot"),
		now:    time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewFibonacci(500*time.Millisecond))
		},
	}
}

// objectKey places dumps under prefix/year/month/day/unix-nanos.json so
// consecutive snapshots never collide.
func (e *Exporter) objectKey() string {
	d := e.now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%d.json", e.prefix, d.Year(), d.Month(), d.Day(), d.UnixNano())
}

// Export dumps the source once. Uploads are retried with fibonacci backoff
// for up to five attempts; the dump itself is read exactly once.
func (e *Exporter) Export(ctx context.Context) error {
	rows, err := e.source(ctx)
	if err != nil {
		return fmt.Errorf("snapshot source error: %w", err)
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("snapshot encode error: %w", err)
	}

	key := e.objectKey()

	err = retry.Do(ctx, e.backoff(), func(ctx context.Context) error {
		_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(e.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			e.log.Warn(ctx, "snapshot upload failed, retrying", "key", key, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot upload error: %w", err)
	}

	e.log.Info(ctx, "snapshot uploaded", "key", key, "bytes", len(body))
	return nil
}

// Run exports on every tick of interval until ctx is cancelled. Failures are
// logged and the loop keeps going; a snapshot is a best-effort audit aid.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Export(ctx); err != nil {
				e.log.Error(ctx, "snapshot export failed", "error", err)
			}
		}
	}
}
