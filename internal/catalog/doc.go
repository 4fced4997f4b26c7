// Package catalog builds the image catalog from an outputs folder.
//
// # Builder
//
// The Builder coordinates the whole scan:
//
//  1. Walk the root recursively for files with a configured extension
//  2. Derive the sub-folder and date from the two parent directories
//  3. Read each file's embedded annotation through a MetadataReader
//  4. Parse the annotation into prompt tags and generation info
//
// # Basic Usage
//
//	reader := metadata.NewReader(settings.ReadDimensions)
//	builder := catalog.NewBuilder(settings, reader, func(event catalog.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	cat, err := builder.Build(ctx, settings.OutputsPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Folder Layout
//
// Generators write into <sub-folder>/<date>/<image>. Upscaler output lives
// directly in a folder whose name contains the extras marker; such images
// get that folder as sub-folder and an empty date:
//
//	outputs/txt2img-images/2024-01-01/00001.png  -> txt2img-images, 2024-01-01
//	outputs/extras-images/00002.png              -> extras-images, ""
//
// # Degraded Records
//
// A file that cannot be read is skipped. A file whose annotation is missing,
// "None" or malformed still gets a record with its path-derived fields and
// empty generation data, so one bad image never fails the build.
//
// # Concurrency
//
// Annotations are read by at most settings.Workers goroutines. Progress()
// reports processed and total file counts while Build runs.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package catalog
