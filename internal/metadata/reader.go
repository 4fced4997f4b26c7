package metadata

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	ioutils "github.com/handiism/sd-gallery/internal/io"
	"github.com/handiism/sd-gallery/internal/model"
)

// ParametersKey is the PNG text keyword holding the generation annotation.
const ParametersKey = "parameters"

// ErrUnsupportedFormat is returned for files that are not PNG, JPEG or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format identifies an image container.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatWebP
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// Sniff detects the container format from the first bytes of a file.
func Sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte(pngSignature)):
		return FormatPNG
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return FormatWebP
	default:
		return FormatUnknown
	}
}

// Reader extracts generation annotations from image files.
//
// PNG files carry the annotation in a "parameters" text chunk. JPEG and
// WebP files carry it in the EXIF UserComment field. The format is detected
// from the file content, not its extension.
type Reader struct {
	images         *ioutils.ImageService
	readDimensions bool
}

// NewReader creates a Reader. When readDimensions is set, the image header
// is decoded for width and height as well.
func NewReader(readDimensions bool) *Reader {
	return &Reader{
		images:         ioutils.NewImageService(),
		readDimensions: readDimensions,
	}
}

// Read returns the annotation and dimensions of the image at path.
//
// An error is returned only when the file cannot be opened, is not a
// supported image, or is a PNG too damaged to yield any text chunk. A
// readable image without an annotation has HasParameters set to false.
func (r *Reader) Read(ctx context.Context, path string) (model.ImageMeta, error) {
	if err := ctx.Err(); err != nil {
		return model.ImageMeta{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.ImageMeta{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(12)

	var meta model.ImageMeta
	switch Sniff(head) {
	case FormatPNG:
		texts, err := ReadPNGText(br)
		if err != nil && len(texts) == 0 {
			return model.ImageMeta{}, err
		}
		meta.Parameters, meta.HasParameters = texts[ParametersKey]

	case FormatJPEG:
		meta.Parameters, meta.HasParameters = userComment(br)

	case FormatWebP:
		data, err := webpEXIF(br)
		if err != nil {
			return model.ImageMeta{}, err
		}
		if data != nil {
			meta.Parameters, meta.HasParameters = userComment(bytes.NewReader(data))
		}

	default:
		return model.ImageMeta{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if r.readDimensions {
		if w, h, err := r.images.Dimensions(ctx, path); err == nil {
			meta.Width, meta.Height = w, h
		}
	}

	return meta, nil
}
