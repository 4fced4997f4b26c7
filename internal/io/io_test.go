package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestImageService_Dimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")

	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewImageService()
	w, h, err := svc.Dimensions(context.Background(), path)
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if w != 12 || h != 7 {
		t.Errorf("Dimensions() = %dx%d, want 12x7", w, h)
	}

	_, format, err := svc.DecodeConfig(context.Background(), path)
	if err != nil || format != "png" {
		t.Errorf("DecodeConfig() format = %q, err = %v", format, err)
	}
}

func TestImageService_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := NewImageService().Dimensions(context.Background(), path); err == nil {
		t.Error("expected error for non-image file")
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	if err := WriteFile(context.Background(), path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
	if !IsDir(filepath.Dir(path)) {
		t.Error("parent directory should exist")
	}
}

func TestWriteFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "out.txt")
	if err := WriteFile(ctx, path, []byte("x")); err == nil {
		t.Error("expected context error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not be written after cancellation")
	}
}
