// Package ioutils provides file system and image header utilities.
//
// This package contains functions for:
//   - File writing and directory creation for exports
//   - Reading image dimensions without decoding pixel data
//
// # File Operations
//
//	// Ensure the export directory exists
//	err := ioutils.EnsureDir("/exports/2024-01-01")
//
//	// Write an export file
//	err := ioutils.WriteFile(ctx, "/exports/2024-01-01/catalog.csv", data)
//
// # Image Headers
//
// The ImageService reads image headers. PNG, JPEG, GIF, WebP, BMP and TIFF are
// supported:
//
//	svc := ioutils.NewImageService()
//	cfg, format, err := svc.DecodeConfig(ctx, "/outputs/txt2img/00001.png")
//	fmt.Println(format, cfg.Width, cfg.Height) // png 512 768
package ioutils
