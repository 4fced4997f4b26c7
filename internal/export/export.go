package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/handiism/sd-gallery/internal/model"
	"github.com/handiism/sd-gallery/internal/prompt"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an export format name that is not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the layout of an export.
type Format int

const (
	// FormatPaths writes one absolute image path per line.
	FormatPaths Format = iota
	// FormatCSV writes a manifest with one row per image.
	FormatCSV
	// FormatJSON writes an array of records.
	FormatJSON
	// FormatYAML writes a sequence of records.
	FormatYAML
	// FormatM3U writes an extended M3U playlist for slideshow viewers.
	FormatM3U
)

// Formats lists every supported format.
var Formats = []Format{FormatPaths, FormatCSV, FormatJSON, FormatYAML, FormatM3U}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPaths:
		return "paths"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatM3U:
		return "m3u"
	default:
		return "unknown"
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	if f == FormatPaths {
		return ".txt"
	}
	return "." + f.String()
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "txt", "list":
		return FormatPaths, nil
	case "yml":
		return FormatYAML, nil
	case "m3u8", "playlist":
		return FormatM3U, nil
	}
	for _, f := range Formats {
		if n == f.String() {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// CSVHeader is the first row of a CSV manifest.
var CSVHeader = []string{
	"path", "sub_folder", "date", "model", "sampler", "steps",
	"width", "height", "prompt_tags", "negative_prompt_tags",
}

// Write exports records to w in the given format.
func Write(w io.Writer, records []*model.ImageRecord, format Format) error {
	switch format {
	case FormatPaths:
		return writePaths(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		return writeJSON(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	case FormatM3U:
		return writeM3U(w, records)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
}

func writePaths(w io.Writer, records []*model.ImageRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintln(bw, r.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeCSV(w io.Writer, records []*model.ImageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Path,
			r.SubFolder,
			r.Date,
			r.Model,
			r.Sampler,
			r.Steps,
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
			prompt.Join(r.PromptTags),
			prompt.Join(r.NegativePromptTags),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// record is the exported shape of one image.
type record struct {
	Path               string                `json:"path" yaml:"path"`
	SubFolder          string                `json:"sub_folder" yaml:"sub_folder"`
	Date               string                `json:"date" yaml:"date"`
	Model              string                `json:"model" yaml:"model"`
	Sampler            string                `json:"sampler" yaml:"sampler"`
	Steps              string                `json:"steps" yaml:"steps"`
	Width              int                   `json:"width,omitempty" yaml:"width,omitempty"`
	Height             int                   `json:"height,omitempty" yaml:"height,omitempty"`
	Prompt             string                `json:"prompt" yaml:"prompt"`
	NegativePrompt     string                `json:"negative_prompt" yaml:"negative_prompt"`
	PromptTags         []string              `json:"prompt_tags" yaml:"prompt_tags"`
	NegativePromptTags []string              `json:"negative_prompt_tags" yaml:"negative_prompt_tags"`
	GenerationInfo     *model.GenerationInfo `json:"generation_info" yaml:"-"`
	GenerationInfoYAML *yaml.Node            `json:"-" yaml:"generation_info"`
}

func newRecord(r *model.ImageRecord) record {
	return record{
		Path:               r.Path,
		SubFolder:          r.SubFolder,
		Date:               r.Date,
		Model:              r.Model,
		Sampler:            r.Sampler,
		Steps:              r.Steps,
		Width:              r.Width,
		Height:             r.Height,
		Prompt:             r.PromptRaw,
		NegativePrompt:     r.NegativePromptRaw,
		PromptTags:         nonNil(r.PromptTags),
		NegativePromptTags: nonNil(r.NegativePromptTags),
		GenerationInfo:     r.GenerationInfo,
	}
}

func writeJSON(w io.Writer, records []*model.ImageRecord) error {
	out := make([]record, len(records))
	for i, r := range records {
		out[i] = newRecord(r)
		if out[i].GenerationInfo == nil {
			out[i].GenerationInfo = model.NewGenerationInfo()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeYAML(w io.Writer, records []*model.ImageRecord) error {
	out := make([]record, len(records))
	for i, r := range records {
		out[i] = newRecord(r)
		out[i].GenerationInfoYAML = infoNode(r.GenerationInfo)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// infoNode builds a mapping node that keeps the key order of info.
func infoNode(info *model.GenerationInfo) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range info.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: info.Value(k)},
		)
	}
	return node
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
