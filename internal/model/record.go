package model

import (
	"fmt"
)

// ImageRecord holds everything the gallery knows about one image file.
type ImageRecord struct {
	// Path is the absolute file location and the unique key of the record.
	Path string

	// SubFolder and Date come from the two parent directories of the file.
	// For images in an extras folder, SubFolder is that folder and Date is empty.
	SubFolder string
	Date      string

	// Model, Sampler and Steps are lifted from GenerationInfo.
	// Empty when the annotation does not name them.
	Model   string
	Sampler string
	Steps   string

	// GenerationInfo holds every key/value pair of the structured annotation tail.
	GenerationInfo *GenerationInfo

	// PromptTags and NegativePromptTags are normalized tags in first-seen order.
	// Duplicates are kept.
	PromptTags         []string
	NegativePromptTags []string

	// PromptRaw and NegativePromptRaw are the untouched prompt substrings.
	PromptRaw         string
	NegativePromptRaw string

	// Width and Height are the pixel dimensions, 0 when unknown.
	Width  int
	Height int
}

// NewRecord returns a default record for path with the given folder fields.
func NewRecord(path, subFolder, date string) *ImageRecord {
	return &ImageRecord{
		Path:               path,
		SubFolder:          subFolder,
		Date:               date,
		GenerationInfo:     NewGenerationInfo(),
		PromptTags:         []string{},
		NegativePromptTags: []string{},
	}
}

// HasGenerationData reports whether any generation info was recovered.
func (r *ImageRecord) HasGenerationData() bool {
	return r.GenerationInfo != nil && r.GenerationInfo.Len() > 0
}

// HasTags reports whether the record carries every tag in tags.
func (r *ImageRecord) HasTags(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	own := make(map[string]struct{}, len(r.PromptTags))
	for _, t := range r.PromptTags {
		own[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := own[t]; !ok {
			return false
		}
	}
	return true
}

// ImageMeta is what a metadata reader extracts from one image file.
type ImageMeta struct {
	// Parameters is the raw "parameters" text annotation.
	Parameters string

	// HasParameters is false when the file carries no such annotation.
	HasParameters bool

	Width  int
	Height int
}

const detailTemplate = `
Prompt
%s
Negative Prompt
%s
Generation Data
%s
`

// FormatDetail renders the plain-text detail block shown for a selected image.
func FormatDetail(r *ImageRecord) string {
	if r == nil {
		return fmt.Sprintf(detailTemplate, "", "", "")
	}
	info := ""
	if r.GenerationInfo != nil {
		info = r.GenerationInfo.String()
	}
	return fmt.Sprintf(detailTemplate, r.PromptRaw, r.NegativePromptRaw, info)
}
