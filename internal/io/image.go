package ioutils

import (
	"context"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService reads image headers for the catalog.
//
// Only the header is decoded, so reading the dimensions of a large image
// costs a few hundred bytes of I/O.
//
// Example usage:
//
//	svc := NewImageService()
//	w, h, err := svc.Dimensions(ctx, "/outputs/extras-images/00001.png")
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// DecodeConfig returns the color model, dimensions and format name of the
// image at path.
//
// Returns an error if the file cannot be opened or its format is not
// registered.
func (s *ImageService) DecodeConfig(ctx context.Context, path string) (image.Config, string, error) {
	if err := ctx.Err(); err != nil {
		return image.Config{}, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	return image.DecodeConfig(f)
}

// Dimensions returns the width and height of the image at path.
func (s *ImageService) Dimensions(ctx context.Context, path string) (int, int, error) {
	cfg, _, err := s.DecodeConfig(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
