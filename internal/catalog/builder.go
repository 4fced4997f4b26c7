package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/handiism/sd-gallery/internal/annotation"
	"github.com/handiism/sd-gallery/internal/config"
	"github.com/handiism/sd-gallery/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a catalog build progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// ErrNotDirectory is returned when the catalog root is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// MetadataReader extracts the embedded annotation of one image file.
//
// An error means the file could not be read at all. A readable file without
// an annotation returns ImageMeta with HasParameters set to false.
type MetadataReader interface {
	Read(ctx context.Context, path string) (model.ImageMeta, error)
}

// ReaderFunc adapts a function to the MetadataReader interface.
type ReaderFunc func(ctx context.Context, path string) (model.ImageMeta, error)

// Read calls f(ctx, path).
func (f ReaderFunc) Read(ctx context.Context, path string) (model.ImageMeta, error) {
	return f(ctx, path)
}

// Builder scans an outputs folder and builds a Catalog.
type Builder struct {
	settings *config.Settings
	reader   MetadataReader

	totalFiles int32
	doneFiles  int32

	onProgress func(ProgressEvent)
}

// NewBuilder creates a new catalog Builder.
func NewBuilder(settings *config.Settings, reader MetadataReader, onProgress func(ProgressEvent)) *Builder {
	return &Builder{
		settings:   settings,
		reader:     reader,
		onProgress: onProgress,
	}
}

// Build walks root and returns one record per readable image.
//
// Records keep discovery order. Files the reader cannot open are skipped,
// files without usable parameters get a default record. The only errors
// returned are ErrNotDirectory and context cancellation.
func (b *Builder) Build(ctx context.Context, root string) (*model.Catalog, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	paths, err := b.discover(ctx, abs)
	if err != nil {
		return nil, err
	}

	atomic.StoreInt32(&b.totalFiles, int32(len(paths)))
	atomic.StoreInt32(&b.doneFiles, 0)
	b.progress(ProgressEvent{Message: fmt.Sprintf("Found %d images in %s", len(paths), abs), Level: LevelInfo})

	records := make([]*model.ImageRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.settings.Workers, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = b.buildRecord(gctx, path)
			atomic.AddInt32(&b.doneFiles, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog := &model.Catalog{Root: abs, Records: make([]*model.ImageRecord, 0, len(records))}
	for _, r := range records {
		if r != nil {
			catalog.Records = append(catalog.Records, r)
		}
	}

	if skipped := len(paths) - catalog.Len(); skipped > 0 {
		b.progress(ProgressEvent{Message: fmt.Sprintf("Catalog built: %d images, %d unreadable files skipped", catalog.Len(), skipped), Level: LevelWarning})
	} else {
		b.progress(ProgressEvent{Message: fmt.Sprintf("Catalog built: %d images", catalog.Len()), Level: LevelSuccess})
	}

	return catalog, nil
}

// Progress returns how many discovered files have been processed.
func (b *Builder) Progress() (done, total int) {
	return int(atomic.LoadInt32(&b.doneFiles)), int(atomic.LoadInt32(&b.totalFiles))
}

// DerivePath returns the folder fields of the image at path.
//
// Date is the parent directory name and subFolder the grandparent's. When the
// parent name contains marker, subFolder is the parent and date is empty.
func DerivePath(path, marker string) (subFolder, date string) {
	parent := filepath.Dir(path)
	parentName := filepath.Base(parent)
	if marker != "" && strings.Contains(parentName, marker) {
		return parentName, ""
	}
	return filepath.Base(filepath.Dir(parent)), parentName
}

func (b *Builder) discover(ctx context.Context, root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			b.progress(ProgressEvent{Message: fmt.Sprintf("Cannot read %s: %v", path, err), Level: LevelWarning})
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != root && b.settings.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() && b.settings.HasExtension(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (b *Builder) buildRecord(ctx context.Context, path string) *model.ImageRecord {
	subFolder, date := DerivePath(path, b.settings.ExtrasMarker)

	meta, err := b.reader.Read(ctx, path)
	if err != nil {
		b.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", path, err), Level: LevelWarning})
		return nil
	}

	record := model.NewRecord(path, subFolder, date)
	record.Width = meta.Width
	record.Height = meta.Height

	if !meta.HasParameters || annotation.IsNone(meta.Parameters) {
		b.progress(ProgressEvent{Message: fmt.Sprintf("No generation parameters: %s", filepath.Base(path)), Level: LevelVerbose})
		return record
	}

	params, err := annotation.Parse(meta.Parameters)
	if err != nil {
		b.progress(ProgressEvent{Message: fmt.Sprintf("Could not parse parameters of %s: %v", filepath.Base(path), err), Level: LevelWarning})
		return record
	}

	record.Model = params.Model
	record.Sampler = params.Sampler
	record.Steps = params.Steps
	record.GenerationInfo = params.Info
	record.PromptTags = params.PromptTags
	record.NegativePromptTags = params.NegativePromptTags
	record.PromptRaw = params.PromptRaw
	record.NegativePromptRaw = params.NegativePromptRaw

	b.progress(ProgressEvent{Message: fmt.Sprintf("Indexed: %s", filepath.Base(path)), Level: LevelVerbose})
	return record
}

func (b *Builder) progress(event ProgressEvent) {
	if b.onProgress != nil {
		b.onProgress(event)
	}
}
