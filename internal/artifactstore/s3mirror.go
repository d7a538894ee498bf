package artifactstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// multipartThreshold is the part size manager.Uploader switches to
// multipart PutObject at; GeoJSON snapshots and raw HTML archives can
// comfortably exceed a single-part PUT once a scrape run accumulates.
const multipartThreshold = 5 * 1024 * 1024

// S3Mirror optionally uploads artifact writes to an S3-compatible bucket
// (AWS S3 or Cloudflare R2). Configuring ARTIFACT_S3_BUCKET enables it;
// otherwise the Store operates local-disk-only.
type S3Mirror struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3MirrorConfig configures an S3Mirror. Endpoint is optional and, when
// set, points the client at an S3-compatible endpoint such as R2.
type S3MirrorConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Mirror builds an S3Mirror from cfg.
func NewS3Mirror(ctx context.Context, cfg S3MirrorConfig) (*S3Mirror, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config for artifact mirror: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = multipartThreshold
	})

	return &S3Mirror{client: client, uploader: uploader, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload implements Mirror by uploading data under prefix/name, breaking
// it into multipart parts once it exceeds multipartThreshold.
func (m *S3Mirror) Upload(ctx context.Context, name string, data []byte) error {
	key := name
	if m.prefix != "" {
		key = m.prefix + "/" + name
	}
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3 mirror: %w", key, err)
	}
	return nil
}
