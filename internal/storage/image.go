package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/ikkim/foodgram-backend/pkg/logger"
)

var ErrInvalidImage = errors.New("invalid image")

const recipeImageFolder = "recipes"

// ProcessedImage is an image ready to be stored.
type ProcessedImage struct {
	Data        []byte
	Ext         string
	ContentType string
}

// DecodeDataURI splits "data:image/<fmt>;base64,<payload>" and decodes the
// payload.
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 image data URI", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	return data, nil
}

// DefaultMaxPixels bounds width*height of an accepted upload.
const DefaultMaxPixels = 40_000_000

// NormalizeImage decodes raw image bytes, shrinks the image to fit within
// maxDim x maxDim when it is larger, and re-encodes it. PNG input stays PNG,
// every other format becomes JPEG. Images whose header declares more than
// maxPixels pixels are rejected before any pixel data is decoded.
func NormalizeImage(data []byte, maxDim, maxPixels int) (*ProcessedImage, error) {
	format, err := imaging.FormatFromExtension(sniffFormat(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported format", ErrInvalidImage)
	}

	if err := checkDimensions(data, maxPixels); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if maxDim > 0 && (bounds.Dx() > maxDim || bounds.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	out := &ProcessedImage{Ext: "jpg", ContentType: "image/jpeg"}
	var buf bytes.Buffer
	if format == imaging.PNG {
		out.Ext, out.ContentType = "png", "image/png"
		err = imaging.Encode(&buf, img, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// checkDimensions reads only the image header.
func checkDimensions(data []byte, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// sniffFormat maps magic bytes to a file extension understood by imaging.
func sniffFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "jpg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	}
	return ""
}

// ImageUploader turns data URIs into stored recipe images.
type ImageUploader struct {
	store     ImageStore
	maxDim    int
	maxPixels int
}

// NewImageUploader stores images downscaled to maxDim. maxPixels <= 0
// selects DefaultMaxPixels.
func NewImageUploader(store ImageStore, maxDim, maxPixels int) *ImageUploader {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &ImageUploader{store: store, maxDim: maxDim, maxPixels: maxPixels}
}

// Upload decodes, normalizes and stores a data URI image and returns its
// storage key.
func (u *ImageUploader) Upload(ctx context.Context, dataURI string) (string, error) {
	raw, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	img, err := NormalizeImage(raw, u.maxDim, u.maxPixels)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", recipeImageFolder, uuid.New().String(), img.Ext)
	if err := u.store.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// Remove deletes a stored image, logging instead of failing.
func (u *ImageUploader) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete image", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// URL resolves a storage key to a public URL.
func (u *ImageUploader) URL(key string) string {
	return u.store.URL(key)
}
