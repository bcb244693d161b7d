package services

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// SignedURL presigns a GET for an object given either its key or the public
// URL returned by Upload.
func (s *ImageStorage) SignedURL(ctx context.Context, object string, duration time.Duration) (string, error) {
	if s.client == nil {
		return "", ErrStorageUnavailable
	}
	key := strings.TrimPrefix(object, s.baseURL+"/")

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
