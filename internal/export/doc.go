// Package export writes a catalog, or a filtered part of it, to a file.
//
// Supported formats:
//   - paths: one absolute image path per line, for piping into other tools
//   - csv: a manifest with folder, model, sampler, steps, size and tags
//   - json: an array of records with the generation info in original order
//   - yaml: the same records as a YAML sequence
//   - m3u: an extended M3U playlist for slideshow viewers
//
// Example:
//
//	format, err := export.ParseFormat("csv")
//	if err != nil {
//	    return err
//	}
//	err = export.Write(os.Stdout, res.Catalog.Records, format)
package export
