package metadata

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/text/encoding/charmap"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// maxTextChunk bounds the size of a text chunk read into memory.
const maxTextChunk = 16 << 20

var (
	// ErrNotPNG is returned when the PNG signature is missing.
	ErrNotPNG = errors.New("not a PNG file")

	// ErrBadChunk is returned for a text chunk that cannot be decoded.
	ErrBadChunk = errors.New("bad PNG text chunk")
)

// ReadPNGText returns the keyword/text pairs of every tEXt, zTXt and iTXt
// chunk in the PNG stream r.
//
// tEXt and zTXt text is Latin-1 and converted to UTF-8. Chunks with a bad
// CRC are ignored. A later chunk with the same keyword overwrites an
// earlier one.
func ReadPNGText(r io.Reader) (map[string]string, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil || string(sig) != pngSignature {
		return nil, ErrNotPNG
	}

	texts := make(map[string]string)
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if errors.Is(err, io.EOF) {
				return texts, nil
			}
			return texts, fmt.Errorf("truncated PNG: %w", err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		kind := string(header[4:8])

		switch kind {
		case "IEND":
			return texts, nil
		case "tEXt", "zTXt", "iTXt":
			if length > maxTextChunk {
				if err := skip(br, int64(length)+4); err != nil {
					return texts, err
				}
				continue
			}
			data := make([]byte, int(length)+4)
			if _, err := io.ReadFull(br, data); err != nil {
				return texts, fmt.Errorf("truncated PNG: %w", err)
			}
			body, crc := data[:length], binary.BigEndian.Uint32(data[length:])
			if crc32.Update(crc32.ChecksumIEEE(header[4:8]), crc32.IEEETable, body) != crc {
				continue
			}
			keyword, text, err := decodeTextChunk(kind, body)
			if err != nil {
				continue
			}
			texts[keyword] = text
		default:
			if err := skip(br, int64(length)+4); err != nil {
				return texts, err
			}
		}
	}
}

func skip(br *bufio.Reader, n int64) error {
	if _, err := io.CopyN(io.Discard, br, n); err != nil {
		return fmt.Errorf("truncated PNG: %w", err)
	}
	return nil
}

// decodeTextChunk splits one text chunk body into keyword and text.
func decodeTextChunk(kind string, body []byte) (string, string, error) {
	keyword, rest, found := bytes.Cut(body, []byte{0})
	if !found || len(keyword) == 0 {
		return "", "", ErrBadChunk
	}
	key, err := latin1(keyword)
	if err != nil {
		return "", "", err
	}

	switch kind {
	case "tEXt":
		text, err := latin1(rest)
		return key, text, err

	case "zTXt":
		if len(rest) < 1 || rest[0] != 0 {
			return "", "", ErrBadChunk
		}
		raw, err := inflate(rest[1:])
		if err != nil {
			return "", "", err
		}
		text, err := latin1(raw)
		return key, text, err

	case "iTXt":
		if len(rest) < 2 {
			return "", "", ErrBadChunk
		}
		compressed, method := rest[0], rest[1]
		// Skip the language tag and the translated keyword.
		_, rest, found = bytes.Cut(rest[2:], []byte{0})
		if !found {
			return "", "", ErrBadChunk
		}
		_, rest, found = bytes.Cut(rest, []byte{0})
		if !found {
			return "", "", ErrBadChunk
		}
		if compressed == 1 {
			if method != 0 {
				return "", "", ErrBadChunk
			}
			raw, err := inflate(rest)
			if err != nil {
				return "", "", err
			}
			return key, string(raw), nil
		}
		return key, string(rest), nil
	}

	return "", "", ErrBadChunk
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadChunk, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxTextChunk))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadChunk, err)
	}
	return out, nil
}

func latin1(b []byte) (string, error) {
	return charmap.ISO8859_1.NewDecoder().String(string(b))
}
