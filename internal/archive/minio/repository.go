package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/model"
)

type minioArchive struct {
	cli    *minio.Client
	bucket string
}

func New(ctx context.Context, conf config.MinIO) (*minioArchive, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: conf.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.BucketExists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("client.MakeBucket: %w", err)
		}
	}

	return &minioArchive{
		cli:    client,
		bucket: conf.Bucket,
	}, nil
}

func (ma *minioArchive) Archive(ctx context.Context, posts []model.Post, at time.Time) (string, error) {
	data, err := json.Marshal(posts)
	if err != nil {
		return "", fmt.Errorf("encoding posts: %w", err)
	}
	objectName := ObjectName(at, uuid.New())

	_, err = ma.cli.PutObject(
		ctx,
		ma.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	return objectName, nil
}

// ObjectName groups archives by the UTC day of the sweep.
func ObjectName(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("posts/%s/%s.json", at.UTC().Format("2006-01-02"), id.String())
}
