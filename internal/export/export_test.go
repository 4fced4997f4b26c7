package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/handiism/sd-gallery/internal/model"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []*model.ImageRecord {
	a := model.NewRecord("/out/batch1/2024-01-01/1.png", "batch1", "2024-01-01")
	a.Model = "A"
	a.Sampler = "Euler a"
	a.Steps = "20"
	a.Width, a.Height = 512, 768
	a.PromptRaw = "x, y"
	a.PromptTags = []string{"x", "y"}
	a.NegativePromptTags = []string{"blurry"}
	a.GenerationInfo.Set("Steps", "20")
	a.GenerationInfo.Set("Sampler", "Euler a")
	a.GenerationInfo.Set("Model", "A")

	b := model.NewRecord("/out/extras/3.png", "extras", "")
	return []*model.ImageRecord{a, b}
}

func TestWrite_Paths(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatPaths); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "/out/batch1/2024-01-01/1.png\n/out/extras/3.png\n"
	if buf.String() != want {
		t.Errorf("paths export = %q, want %q", buf.String(), want)
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatCSV); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], CSVHeader) {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"/out/batch1/2024-01-01/1.png", "batch1", "2024-01-01", "A", "Euler a", "20", "512", "768", "x,y", "blurry"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
	if rows[2][1] != "extras" || rows[2][2] != "" || rows[2][6] != "0" {
		t.Errorf("default row = %v", rows[2])
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["model"] != "A" || decoded[0]["width"] != float64(512) {
		t.Errorf("record = %v", decoded[0])
	}
	if _, ok := decoded[1]["width"]; ok {
		t.Error("zero width should be omitted")
	}
	if info, ok := decoded[1]["generation_info"].(map[string]any); !ok || len(info) != 0 {
		t.Errorf("empty generation info = %v", decoded[1]["generation_info"])
	}

	steps := strings.Index(out, `"Steps"`)
	sampler := strings.Index(out, `"Sampler"`)
	mdl := strings.Index(out, `"Model"`)
	if !(steps < sampler && sampler < mdl) {
		t.Error("generation info keys should keep their order")
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatYAML); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}

	info, ok := decoded[0]["generation_info"].(map[string]any)
	if !ok {
		t.Fatalf("generation_info = %T", decoded[0]["generation_info"])
	}
	if info["Steps"] != "20" {
		t.Errorf("Steps = %#v, want string \"20\"", info["Steps"])
	}

	if !(strings.Index(out, "Steps:") < strings.Index(out, "Sampler:") && strings.Index(out, "Sampler:") < strings.Index(out, "Model:")) {
		t.Error("generation info keys should keep their order")
	}
}

func TestWrite_M3U(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatM3U); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "#EXTM3U\n" +
		"#EXTINF:-1,A - 1.png\n/out/batch1/2024-01-01/1.png\n" +
		"#EXTINF:-1,3.png\n/out/extras/3.png\n"
	if buf.String() != want {
		t.Errorf("m3u export = %q, want %q", buf.String(), want)
	}
}

func TestPlaylistTitle_EscapesSeparators(t *testing.T) {
	r := model.NewRecord("/out/a/b/img.png", "a", "b")
	r.Model = "mix,v2"
	if got := playlistTitle(r); got != "mix v2 - img.png" {
		t.Errorf("playlistTitle() = %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, Format(99)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"paths", FormatPaths, false},
		{"", FormatPaths, false},
		{"CSV", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"m3u", FormatM3U, false},
		{"playlist", FormatM3U, false},
		{"xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("error = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = (%v, %v), want %v", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestFormat_Extension(t *testing.T) {
	want := map[Format]string{FormatPaths: ".txt", FormatCSV: ".csv", FormatJSON: ".json", FormatYAML: ".yaml", FormatM3U: ".m3u"}
	for f, ext := range want {
		if got := f.Extension(); got != ext {
			t.Errorf("%v.Extension() = %q, want %q", f, got, ext)
		}
	}
}
