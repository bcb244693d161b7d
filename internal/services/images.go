package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"

	"go.uber.org/zap"
)

type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, object string, duration time.Duration) (string, error)
}

type ImageStore interface {
	TxRunner
	BookReader
	ImagesForBook(ctx context.Context, bookID int64) ([]models.ExtraImage, error)
}

// signedURLTTL bounds the links handed to staff for reviewing uploads.
const signedURLTTL = 15 * time.Minute

// ImageUpload is one file of a multiple upload.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Images struct {
	store   ImageStore
	storage ObjectStorage
	cache   CatalogCache
	logger  *zap.Logger
}

func NewImages(store ImageStore, storage ObjectStorage, cache CatalogCache, logger *zap.Logger) *Images {
	return &Images{store: store, storage: storage, cache: cache, logger: logger}
}

// Upload stores every file as an extra image of the book. Cover and back
// roles also replace the book's own picture; with several files the last
// one wins.
func (s *Images) Upload(ctx context.Context, slug string, role models.ImageRole, files []ImageUpload) ([]models.ExtraImage, error) {
	if len(files) == 0 {
		return nil, models.NewValidationError(map[string]string{"images": "This field is required."})
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, models.NewValidationError(map[string]string{
				"images": fmt.Sprintf("%s is not an image.", f.Filename),
			})
		}
	}

	book, err := s.store.BookBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	uploaded := make([]models.ExtraImage, 0, len(files))
	for _, f := range files {
		key := models.ExtraImageKey(book.Slug, f.Filename)
		url, err := s.storage.Upload(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", f.Filename, err)
		}
		uploaded = append(uploaded, models.ExtraImage{BookID: book.ID, Key: key, URL: url, Role: role})
	}

	saved := make([]models.ExtraImage, 0, len(uploaded))
	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		changed := false
		for _, img := range uploaded {
			img, err := tx.CreateImage(ctx, img)
			if err != nil {
				return err
			}
			saved = append(saved, img)
			if img.ApplyTo(&book) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
		_, err := tx.SaveBook(ctx, book)
		return err
	})
	if err != nil {
		s.logger.Error("save uploaded images failed", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	s.cache.InvalidateBook(ctx, book.Slug)
	s.logger.Info("book images uploaded",
		zap.String("slug", slug), zap.String("role", role.String()), zap.Int("count", len(saved)))
	return saved, nil
}

// List returns the book's uploaded images with presigned links. An image
// that cannot be signed keeps its public URL.
func (s *Images) List(ctx context.Context, slug string) ([]models.ExtraImage, error) {
	book, err := s.store.BookBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	images, err := s.store.ImagesForBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		signed, err := s.storage.SignedURL(ctx, images[i].URL, signedURLTTL)
		if err != nil {
			s.logger.Warn("presign image failed", zap.String("key", images[i].Key), zap.Error(err))
			continue
		}
		images[i].URL = signed
	}
	return images, nil
}
