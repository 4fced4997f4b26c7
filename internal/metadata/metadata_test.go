package metadata

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const annotation = "masterpiece, 1girl\nNegative prompt: lowres\nSteps: 20, Sampler: Euler a, Model: anything"

// encodePNG returns a w x h PNG with extra chunks inserted before IEND.
func encodePNG(t *testing.T, w, h int, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()
	iend := len(data) - 12

	out := append([]byte{}, data[:iend]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, data[iend:]...)
}

// pngChunk builds a chunk with a valid CRC.
func pngChunk(kind string, body []byte) []byte {
	var c bytes.Buffer
	binary.Write(&c, binary.BigEndian, uint32(len(body)))
	c.WriteString(kind)
	c.Write(body)
	crc := crc32.Update(crc32.ChecksumIEEE([]byte(kind)), crc32.IEEETable, body)
	binary.Write(&c, binary.BigEndian, crc)
	return c.Bytes()
}

func deflate(s string) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte(s))
	zw.Close()
	return buf.Bytes()
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestReadPNGText(t *testing.T) {
	tests := []struct {
		name  string
		chunk []byte
		key   string
		want  string
	}{
		{
			name:  "tEXt",
			chunk: pngChunk("tEXt", join([]byte("parameters\x00"), []byte(annotation))),
			key:   "parameters",
			want:  annotation,
		},
		{
			name:  "tEXt latin1",
			chunk: pngChunk("tEXt", []byte("Comment\x00caf\xe9")),
			key:   "Comment",
			want:  "café",
		},
		{
			name:  "zTXt",
			chunk: pngChunk("zTXt", join([]byte("parameters\x00\x00"), deflate(annotation))),
			key:   "parameters",
			want:  annotation,
		},
		{
			name:  "iTXt uncompressed",
			chunk: pngChunk("iTXt", join([]byte("parameters\x00\x00\x00en\x00\x00"), []byte("猫, cat\nSteps: 1"))),
			key:   "parameters",
			want:  "猫, cat\nSteps: 1",
		},
		{
			name:  "iTXt compressed",
			chunk: pngChunk("iTXt", join([]byte("parameters\x00\x01\x00\x00\x00"), deflate(annotation))),
			key:   "parameters",
			want:  annotation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, err := ReadPNGText(bytes.NewReader(encodePNG(t, 2, 2, tt.chunk)))
			if err != nil {
				t.Fatalf("ReadPNGText failed: %v", err)
			}
			if got := texts[tt.key]; got != tt.want {
				t.Errorf("texts[%q] = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestReadPNGText_BadCRCIgnored(t *testing.T) {
	chunk := pngChunk("tEXt", []byte("parameters\x00x"))
	chunk[len(chunk)-1] ^= 0xFF

	texts, err := ReadPNGText(bytes.NewReader(encodePNG(t, 1, 1, chunk)))
	if err != nil {
		t.Fatalf("ReadPNGText failed: %v", err)
	}
	if _, ok := texts["parameters"]; ok {
		t.Error("chunk with bad CRC should be ignored")
	}
}

func TestReadPNGText_NotPNG(t *testing.T) {
	if _, err := ReadPNGText(bytes.NewReader([]byte("GIF89a......"))); !errors.Is(err, ErrNotPNG) {
		t.Errorf("error = %v, want ErrNotPNG", err)
	}
}

func TestDecodeUserComment(t *testing.T) {
	utf16be := []byte{0, 'h', 0, 'i', 0x00, 0xE9}
	utf16le := []byte{'h', 0, 'i', 0, 0xE9, 0x00}

	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte(asciiPrefix + "Steps: 20\x00"), "Steps: 20"},
		{"unicode big endian", join([]byte(unicodePrefix), utf16be), "hié"},
		{"unicode little endian", join([]byte(unicodePrefix), utf16le), "hié"},
		{"unicode with BOM", join([]byte(unicodePrefix), []byte{0xFF, 0xFE}, utf16le), "hié"},
		{"undefined", []byte(undefinedPrefix + "plain"), "plain"},
		{"no prefix", []byte("plain text comment"), "plain text comment"},
		{"short", []byte("abc"), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeUserComment(tt.raw); got != tt.want {
				t.Errorf("decodeUserComment() = %q, want %q", got, tt.want)
			}
		})
	}
}

// tiffWithComment builds a little-endian TIFF block whose Exif IFD holds
// a single UserComment tag.
func tiffWithComment(comment []byte) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("II*\x00")
	binary.Write(&b, le, uint32(8))

	// IFD0 at 8: ExifIFDPointer -> 26
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(0x8769))
	binary.Write(&b, le, uint16(4))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint32(26))
	binary.Write(&b, le, uint32(0))

	// Exif IFD at 26: UserComment -> 44
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(0x9286))
	binary.Write(&b, le, uint16(7))
	binary.Write(&b, le, uint32(len(comment)))
	binary.Write(&b, le, uint32(44))
	binary.Write(&b, le, uint32(0))

	b.Write(comment)
	return b.Bytes()
}

func riffChunk(kind string, body []byte) []byte {
	var c bytes.Buffer
	c.WriteString(kind)
	binary.Write(&c, binary.LittleEndian, uint32(len(body)))
	c.Write(body)
	if len(body)%2 == 1 {
		c.WriteByte(0)
	}
	return c.Bytes()
}

func webpFile(chunks ...[]byte) []byte {
	body := join(append([][]byte{[]byte("WEBP")}, chunks...)...)
	var f bytes.Buffer
	f.WriteString("RIFF")
	binary.Write(&f, binary.LittleEndian, uint32(len(body)))
	f.Write(body)
	return f.Bytes()
}

func TestWebpEXIF(t *testing.T) {
	payload := tiffWithComment([]byte(asciiPrefix + "x"))
	file := webpFile(
		riffChunk("VP8X", []byte{1, 2, 3}),
		riffChunk("EXIF", join([]byte(exifHeader), payload)),
	)

	data, err := webpEXIF(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("webpEXIF failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("webpEXIF() returned %d bytes, want the %d byte TIFF payload", len(data), len(payload))
	}

	data, err = webpEXIF(bytes.NewReader(webpFile(riffChunk("VP8 ", []byte{0}))))
	if err != nil || data != nil {
		t.Errorf("file without EXIF = (%v, %v), want (nil, nil)", data, err)
	}

	if _, err := webpEXIF(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00WAVE"))); !errors.Is(err, ErrNotWebP) {
		t.Errorf("error = %v, want ErrNotWebP", err)
	}
}

func TestUserComment(t *testing.T) {
	text, ok := userComment(bytes.NewReader(tiffWithComment([]byte(asciiPrefix + annotation))))
	if !ok || text != annotation {
		t.Errorf("userComment() = (%q, %v), want annotation", text, ok)
	}

	if _, ok := userComment(bytes.NewReader([]byte("no exif here"))); ok {
		t.Error("userComment should fail without EXIF data")
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReader_PNG(t *testing.T) {
	withParams := writeFile(t, "a.png", encodePNG(t, 4, 3,
		pngChunk("tEXt", join([]byte("parameters\x00"), []byte(annotation)))))
	without := writeFile(t, "b.png", encodePNG(t, 4, 3))

	r := NewReader(true)

	meta, err := r.Read(context.Background(), withParams)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !meta.HasParameters || meta.Parameters != annotation {
		t.Errorf("Parameters = (%q, %v)", meta.Parameters, meta.HasParameters)
	}
	if meta.Width != 4 || meta.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", meta.Width, meta.Height)
	}

	meta, err = r.Read(context.Background(), without)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if meta.HasParameters {
		t.Error("PNG without text chunk should have no parameters")
	}

	meta, err = NewReader(false).Read(context.Background(), withParams)
	if err != nil || meta.Width != 0 {
		t.Errorf("dimensions should not be read: %+v, %v", meta, err)
	}
}

func TestReader_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 6)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	plain := buf.Bytes()

	// Insert an APP1 EXIF segment right after SOI.
	app1 := join([]byte(exifHeader), tiffWithComment([]byte(asciiPrefix+annotation)))
	var seg bytes.Buffer
	seg.Write([]byte{0xFF, 0xE1})
	binary.Write(&seg, binary.BigEndian, uint16(len(app1)+2))
	seg.Write(app1)
	withExif := join(plain[:2], seg.Bytes(), plain[2:])

	r := NewReader(true)

	meta, err := r.Read(context.Background(), writeFile(t, "a.jpg", withExif))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !meta.HasParameters || meta.Parameters != annotation {
		t.Errorf("Parameters = (%q, %v)", meta.Parameters, meta.HasParameters)
	}
	if meta.Width != 8 || meta.Height != 6 {
		t.Errorf("dimensions = %dx%d, want 8x6", meta.Width, meta.Height)
	}

	meta, err = r.Read(context.Background(), writeFile(t, "b.jpg", plain))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if meta.HasParameters {
		t.Error("JPEG without EXIF should have no parameters")
	}
}

func TestReader_WebP(t *testing.T) {
	file := webpFile(riffChunk("EXIF", join([]byte(exifHeader), tiffWithComment([]byte(asciiPrefix+annotation)))))

	meta, err := NewReader(false).Read(context.Background(), writeFile(t, "a.webp", file))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !meta.HasParameters || meta.Parameters != annotation {
		t.Errorf("Parameters = (%q, %v)", meta.Parameters, meta.HasParameters)
	}
}

func TestReader_Errors(t *testing.T) {
	r := NewReader(false)

	if _, err := r.Read(context.Background(), writeFile(t, "notes.png", []byte("hello world, not an image"))); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Read(ctx, "whatever.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		head []byte
		want Format
	}{
		{[]byte(pngSignature + "\x00\x00\x00\x0d"), FormatPNG},
		{[]byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{[]byte("RIFF\x10\x00\x00\x00WEBPVP8 "), FormatWebP},
		{[]byte("RIFF\x10\x00\x00\x00WAVE"), FormatUnknown},
		{nil, FormatUnknown},
	}
	for _, tt := range tests {
		if got := Sniff(tt.head); got != tt.want {
			t.Errorf("Sniff(%q) = %v, want %v", tt.head, got, tt.want)
		}
	}
}
