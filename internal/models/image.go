package models

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageRole says what an uploaded book image is for. Cover and Back replace
// the book's own cover and back pictures; Gallery only adds an extra image.
type ImageRole int

const (
	RoleGallery ImageRole = iota
	RoleCover
	RoleBack
)

func (r ImageRole) String() string {
	switch r {
	case RoleCover:
		return "cover"
	case RoleBack:
		return "back"
	default:
		return "gallery"
	}
}

func ParseImageRole(s string) (ImageRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gallery":
		return RoleGallery, nil
	case "cover":
		return RoleCover, nil
	case "back":
		return RoleBack, nil
	}
	return RoleGallery, fmt.Errorf("unknown image role %q", s)
}

func (r ImageRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ImageRole) UnmarshalText(b []byte) error {
	role, err := ParseImageRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

type ExtraImage struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Role      ImageRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyTo copies the image URL onto the book field selected by the role.
// It reports whether the book changed.
func (img ExtraImage) ApplyTo(b *Book) bool {
	switch img.Role {
	case RoleCover:
		b.CoverURL = img.URL
		return true
	case RoleBack:
		b.BackURL = img.URL
		return true
	}
	return false
}

// ExtraImageKey builds libro_{slug}/extra_{8 random chars}{ext}. The suffix
// avoids most collisions but does not rule them out.
func ExtraImageKey(bookSlug, filename string) string {
	suffix := uuid.NewString()[:8]
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("libro_"+bookSlug, "extra_"+suffix+ext)
}
