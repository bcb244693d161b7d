package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// ImageStorage stores book pictures in a MinIO bucket.
type ImageStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

var ErrStorageUnavailable = errors.New("image storage not configured")

// NewImageStorage accepts a nil client; every call then fails with
// ErrStorageUnavailable.
func NewImageStorage(client *minio.Client, bucket string) *ImageStorage {
	s := &ImageStorage{client: client, bucket: bucket}
	if client != nil {
		s.baseURL = fmt.Sprintf("%s/%s", client.EndpointURL().String(), bucket)
	}
	return s
}

// Upload writes the object and returns its public URL.
func (s *ImageStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if s.client == nil {
		return "", ErrStorageUnavailable
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

func (s *ImageStorage) ObjectURL(key string) string {
	return s.baseURL + "/" + key
}
