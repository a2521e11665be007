package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/huytrandev/sermon-scribe/pkg/config"
)

// MinIOArchiver copies finished recordings into object storage. The
// local file stays the record of truth; archiving is best effort and a
// failure never touches pipeline state.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver creates an archiver and ensures the bucket exists
func NewMinIOArchiver(cfg *config.ArchiveConfig) (*MinIOArchiver, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &MinIOArchiver{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx := context.Background()
	if err := a.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return a, nil
}

func (a *MinIOArchiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveAudio uploads the recording file under the sermon id, keeping
// the original file extension.
func (a *MinIOArchiver) ArchiveAudio(ctx context.Context, sermonID, filePath string) error {
	objectName := sermonID + filepath.Ext(filePath)
	_, err := a.client.FPutObject(ctx, a.bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: "audio/mp4",
	})
	if err != nil {
		return fmt.Errorf("failed to archive audio %s: %w", objectName, err)
	}
	return nil
}
