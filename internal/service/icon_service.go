package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxIconSize   = 1 * 1024 * 1024 // 1MB
	MinIconWidth  = 16
	MinIconHeight = 16
	IconSize      = 128

	// IconObjectPrefix marks icons that were uploaded rather than picked by name
	IconObjectPrefix = "icons/"

	iconURLExpiry = time.Hour
)

var (
	ErrIconTooLarge             = errors.New("file too large. Maximum size is 1MB")
	ErrInvalidIconFormat        = errors.New("invalid format. Supported: JPEG, PNG")
	ErrIconTooSmall             = errors.New("image too small. Minimum 16x16 pixels")
	ErrInvalidIconData          = errors.New("invalid image data")
	ErrIconStorageNotConfigured = errors.New("icon storage not configured")
)

// AllowedIconExtensions lists the accepted upload extensions
var AllowedIconExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IconService turns uploaded images into square PNG category icons
type IconService struct {
	storage storage.IconRepository
}

// NewIconService creates a new IconService. A nil repository disables uploads.
func NewIconService(storage storage.IconRepository) *IconService {
	return &IconService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *IconService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// IsUploaded reports whether icon refers to a stored object
func IsUploaded(icon string) bool {
	return strings.HasPrefix(icon, IconObjectPrefix)
}

func (s *IconService) decode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxIconSize {
		return nil, ErrIconTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedIconExtensions[ext] {
		return nil, ErrInvalidIconFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidIconData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinIconWidth || bounds.Dy() < MinIconHeight {
		return nil, ErrIconTooSmall
	}
	return img, nil
}

// Upload crops and scales the image to IconSize square, stores it as PNG and
// returns the object path to keep on the category
func (s *IconService) Upload(ctx context.Context, scope domain.Scope, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}

	img, err := s.decode(data, filename)
	if err != nil {
		return "", err
	}

	icon := imaging.Fill(img, IconSize, IconSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, icon); err != nil {
		return "", fmt.Errorf("failed to encode icon: %w", err)
	}

	objectPath := fmt.Sprintf("%s%s/%d/%s.png", IconObjectPrefix, scope.Kind, scope.ID, uuid.New().String())
	path, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/png", int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to upload icon: %w", err)
	}
	return path, nil
}

// URL returns what a client should render for icon: a presigned URL for
// uploaded icons, the icon name otherwise
func (s *IconService) URL(ctx context.Context, icon string) string {
	if !IsUploaded(icon) || !s.IsEnabled() {
		return icon
	}
	url, err := s.storage.GeneratePresignedURL(ctx, icon, iconURLExpiry)
	if err != nil {
		log.Warn().Err(err).Str("icon", icon).Msg("Failed to presign icon URL")
		return ""
	}
	return url
}

// Delete removes an uploaded icon. Named icons are left alone.
func (s *IconService) Delete(ctx context.Context, icon string) error {
	if !IsUploaded(icon) {
		return nil
	}
	if !s.IsEnabled() {
		return ErrIconStorageNotConfigured
	}
	return s.storage.Delete(ctx, icon)
}
