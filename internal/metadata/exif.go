package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/unicode"
)

// Character code prefixes of the EXIF UserComment field.
const (
	asciiPrefix     = "ASCII\x00\x00\x00"
	unicodePrefix   = "UNICODE\x00"
	jisPrefix       = "JIS\x00\x00\x00\x00\x00"
	undefinedPrefix = "\x00\x00\x00\x00\x00\x00\x00\x00"
)

// exifHeader precedes the TIFF structure in JPEG APP1 and WebP EXIF chunks.
const exifHeader = "Exif\x00\x00"

// ErrNotWebP is returned when the RIFF/WEBP header is missing.
var ErrNotWebP = errors.New("not a WebP file")

// userComment decodes the EXIF data in r and returns its UserComment text.
//
// ok is false when r carries no EXIF data or no UserComment tag.
func userComment(r io.Reader) (text string, ok bool) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return "", false
	}
	tag, err := x.Get(exif.UserComment)
	if err != nil {
		return "", false
	}
	return decodeUserComment(tag.Val), true
}

// decodeUserComment converts a raw UserComment value into text.
//
// The first eight bytes name the character code. UNICODE is UTF-16; the
// byte order follows a BOM when present, otherwise it is guessed from the
// first code unit.
func decodeUserComment(b []byte) string {
	if len(b) < 8 {
		return trimNUL(string(b))
	}

	prefix, body := string(b[:8]), b[8:]
	switch prefix {
	case unicodePrefix:
		return decodeUTF16(body)
	case asciiPrefix, jisPrefix, undefinedPrefix:
		return trimNUL(string(body))
	default:
		return trimNUL(string(b))
	}
}

func decodeUTF16(b []byte) string {
	order := unicode.BigEndian
	if len(b) >= 2 && b[0] != 0 && b[1] == 0 {
		order = unicode.LittleEndian
	}
	out, err := unicode.UTF16(order, unicode.UseBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return trimNUL(string(out))
}

func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

// webpEXIF returns the TIFF payload of the EXIF chunk of a WebP stream.
//
// Returns nil data and no error when the file has no EXIF chunk.
func webpEXIF(r io.Reader) ([]byte, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, ErrNotWebP
	}
	if string(header[:4]) != "RIFF" || string(header[8:]) != "WEBP" {
		return nil, ErrNotWebP
	}

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("truncated WebP: %w", err)
		}
		size := int64(binary.LittleEndian.Uint32(chunk[4:]))
		// Chunks are padded to an even size.
		padded := size + size&1

		if string(chunk[:4]) != "EXIF" {
			if _, err := io.CopyN(io.Discard, r, padded); err != nil {
				return nil, fmt.Errorf("truncated WebP: %w", err)
			}
			continue
		}

		if size > maxTextChunk {
			return nil, fmt.Errorf("EXIF chunk too large: %d bytes", size)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("truncated WebP: %w", err)
		}
		return bytes.TrimPrefix(data, []byte(exifHeader)), nil
	}
}
