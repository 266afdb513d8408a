// Package blob uploads Parquet tables to an S3-compatible store
// (Cloudflare R2 in the current deployment).
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"atlas/config"
)

type Uploader struct {
	client *s3.Client
	bucket string
}

func New(ctx context.Context, cfg *config.Config) (*Uploader, error) {
	if !cfg.BlobConfigured() {
		return nil, errors.New("S3_ACCESS_KEY, S3_SECRET_KEY and S3_ENDPOINT must be configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load blob credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &Uploader{client: client, bucket: cfg.S3BucketName}, nil
}

// Upload pushes one float's Parquet table under the fixed partition
// scheme profiles/<float_id>/data.parquet. Failures are reported, not
// raised: the caller treats the upload as best effort.
func (u *Uploader) Upload(ctx context.Context, floatID, localPath string) bool {
	file, err := os.Open(localPath)
	if err != nil {
		slog.Warn("local parquet file not found", "float_id", floatID, "path", localPath)
		return false
	}
	defer file.Close()

	key := fmt.Sprintf("profiles/%s/data.parquet", floatID)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		slog.Error("blob upload failed", "float_id", floatID, "key", key, "error", err)
		return false
	}

	slog.Debug("parquet uploaded", "float_id", floatID, "key", key)
	return true
}
