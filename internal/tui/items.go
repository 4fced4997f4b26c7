package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/handiism/sd-gallery/internal/model"
)

// imageItem shows one record in the gallery list.
type imageItem struct {
	record *model.ImageRecord
}

var _ list.DefaultItem = imageItem{}

func (i imageItem) Title() string {
	return filepath.Base(i.record.Path)
}

func (i imageItem) Description() string {
	parts := []string{orNone(i.record.Model)}
	folder := i.record.SubFolder
	if i.record.Date != "" {
		folder += "/" + i.record.Date
	}
	parts = append(parts, folder)
	if i.record.Width > 0 && i.record.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", i.record.Width, i.record.Height))
	}
	return strings.Join(parts, " · ")
}

// FilterValue lets the list's fuzzy filter match file names, models and tags.
func (i imageItem) FilterValue() string {
	return filepath.Base(i.record.Path) + " " + i.record.Model + " " + strings.Join(i.record.PromptTags, " ")
}

func toItems(records []*model.ImageRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = imageItem{record: r}
	}
	return items
}

func orNone(s string) string {
	if s == "" {
		return model.EmptyValueLabel
	}
	return s
}
