package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/handiism/sd-gallery/internal/model"
	"github.com/handiism/sd-gallery/internal/prompt"
)

const (
	// StepsMarker starts the structured tail of an annotation.
	StepsMarker = "Steps: "

	// NegativePromptMarker separates the positive prompt from the negative one.
	NegativePromptMarker = "Negative prompt: "

	// NoneValue is written by generators that ran without embedding parameters.
	NoneValue = "None"

	// hashesMarker starts the hash lists; matched case-insensitively.
	hashesMarker = "hashes"
)

var (
	// ErrNoParameters is returned for blank or "None" annotations.
	ErrNoParameters = errors.New("no generation parameters")

	// ErrMissingSteps is returned when the annotation has no "Steps: " marker.
	ErrMissingSteps = errors.New(`no "Steps: " marker`)

	// ErrMalformed is returned when the structured tail cannot be decoded.
	ErrMalformed = errors.New("malformed generation info")
)

// Parameters is the decoded content of one annotation.
type Parameters struct {
	PromptRaw         string
	NegativePromptRaw string

	PromptTags         []string
	NegativePromptTags []string

	Info *model.GenerationInfo

	Model   string
	Sampler string
	Steps   string
}

// IsNone reports whether raw carries no generation data.
func IsNone(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == NoneValue
}

// Parse decodes a full annotation.
//
// This method performs the following steps:
//  1. Locates the structured tail at the "Steps: " marker
//  2. Decodes the tail into GenerationInfo
//  3. Splits the head on "Negative prompt: " into raw prompt texts
//  4. Tokenizes both prompts into tags
//
// Returns ErrNoParameters, ErrMissingSteps or an error wrapping ErrMalformed
// when the annotation cannot provide generation data.
func Parse(raw string) (Parameters, error) {
	if IsNone(raw) {
		return Parameters{}, ErrNoParameters
	}

	idx := stepsIndex(raw)
	if idx == -1 {
		return Parameters{}, ErrMissingSteps
	}

	info, err := ParseGenerationInfo(raw[idx:])
	if err != nil {
		return Parameters{}, fmt.Errorf("could not parse generation info: %w", err)
	}

	p := Parameters{
		Info:               info,
		Model:              info.Value("Model"),
		Sampler:            info.Value("Sampler"),
		Steps:              info.Value("Steps"),
		PromptTags:         []string{},
		NegativePromptTags: []string{},
	}

	head := raw[:idx]
	if positive, negative, found := strings.Cut(head, NegativePromptMarker); found {
		p.PromptRaw = positive
		p.NegativePromptRaw = negative
		p.NegativePromptTags = prompt.Tokenize(negative)
	} else {
		p.PromptRaw = head
	}
	p.PromptTags = prompt.Tokenize(p.PromptRaw)

	return p, nil
}

// stepsIndex finds the "Steps: " marker that starts the structured tail.
//
// The tail starts a line, so the last marker at a line start wins; a marker
// in the middle of a line is used only when no line-start marker exists.
func stepsIndex(raw string) int {
	for i := strings.LastIndex(raw, StepsMarker); i != -1; i = strings.LastIndex(raw[:i], StepsMarker) {
		if i == 0 || raw[i-1] == '\n' {
			return i
		}
	}
	return strings.Index(raw, StepsMarker)
}

// ParseGenerationInfo decodes the structured tail of an annotation.
//
// The input must start with "Steps: ". Hash lists and everything after them
// are dropped, trailing separators are trimmed and the remaining "Key: Value"
// pairs are decoded in order. A blank or "None" input yields an empty
// GenerationInfo and no error.
//
// Example:
//
//	info, err := ParseGenerationInfo("Steps: 40, Sampler: DPM++ 2M Karras, CFG scale: 8")
//	info.Value("Sampler") // "DPM++ 2M Karras"
func ParseGenerationInfo(raw string) (*model.GenerationInfo, error) {
	if IsNone(raw) {
		return model.NewGenerationInfo(), nil
	}

	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, StepsMarker) {
		return model.NewGenerationInfo(), ErrMissingSteps
	}

	s = truncateHashes(s)
	s = strings.TrimRight(s, ", \t\r\n")

	info := model.NewGenerationInfo()
	dec := &infoDecoder{input: s}
	if err := dec.decode(info); err != nil {
		return model.NewGenerationInfo(), err
	}
	return info, nil
}

// truncateHashes cuts s at the start of the first pair whose text mentions
// the hashes marker.
func truncateHashes(s string) string {
	idx := indexFold(s, hashesMarker)
	if idx == -1 {
		return s
	}
	if cut := strings.LastIndex(s[:idx], ", "); cut != -1 {
		return s[:cut]
	}
	return s[:idx]
}

// indexFold is strings.Index with ASCII case folding for an ASCII needle.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

// infoDecoder reads "Key: Value" pairs separated by ", ".
//
// Keys end at the first ": ". Values end at the first ", " found outside
// double quotes and outside brace/bracket nesting.
type infoDecoder struct {
	input string
	pos   int
}

func (d *infoDecoder) decode(info *model.GenerationInfo) error {
	for d.pos < len(d.input) {
		key, err := d.readKey()
		if err != nil {
			return err
		}
		value, err := d.readValue()
		if err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		info.Set(key, value)
	}
	return nil
}

func (d *infoDecoder) readKey() (string, error) {
	rest := d.input[d.pos:]
	sep := strings.Index(rest, ": ")
	comma := strings.Index(rest, ", ")
	if sep == -1 || (comma != -1 && comma < sep) {
		end := len(rest)
		if comma != -1 {
			end = comma
		}
		return "", fmt.Errorf("%w: %q has no key separator", ErrMalformed, rest[:end])
	}

	key := strings.TrimSpace(rest[:sep])
	if key == "" {
		return "", fmt.Errorf("%w: empty key at offset %d", ErrMalformed, d.pos)
	}

	d.pos += sep + 2
	return key, nil
}

func (d *infoDecoder) readValue() (string, error) {
	start := d.pos
	depth := 0
	inQuote := false

	i := start
	for ; i < len(d.input); i++ {
		c := d.input[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return "", fmt.Errorf("%w: unbalanced %q at offset %d", ErrMalformed, c, i)
			}
		case ',':
			if depth == 0 && i+1 < len(d.input) && d.input[i+1] == ' ' {
				d.pos = i + 2
				return unquote(strings.TrimSpace(d.input[start:i])), nil
			}
		}
	}

	if inQuote {
		return "", fmt.Errorf("%w: unterminated quote", ErrMalformed)
	}
	if depth != 0 {
		return "", fmt.Errorf("%w: unclosed brace", ErrMalformed)
	}

	d.pos = len(d.input)
	return unquote(strings.TrimSpace(d.input[start:])), nil
}

// unquote strips one level of double quotes from a fully quoted value.
func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	if u, err := strconv.Unquote(v); err == nil {
		return u
	}
	return v[1 : len(v)-1]
}
