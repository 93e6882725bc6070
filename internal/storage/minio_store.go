package storage

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/config"
)

// MinioStore keeps candidate videos in a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Blob.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Blob.AccessKey, cfg.Blob.SecretKey, ""),
		Secure: cfg.Blob.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Blob.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Blob.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.Blob.Bucket).Msg("Created blob bucket")
	}

	return &MinioStore{client: client, bucket: cfg.Blob.Bucket}, nil
}

func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

func (s *MinioStore) Delete(ctx context.Context, reference string) error {
	return s.client.RemoveObject(ctx, s.bucket, reference, minio.RemoveObjectOptions{})
}

func (s *MinioStore) TemporaryURL(ctx context.Context, reference string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, reference, ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
