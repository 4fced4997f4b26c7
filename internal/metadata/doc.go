// Package metadata reads the generation annotation embedded in image files.
//
// Stable Diffusion front-ends store the prompt and sampler settings as one
// text block called "parameters":
//
//   - PNG: a tEXt, zTXt or iTXt chunk with the keyword "parameters"
//   - JPEG: the EXIF UserComment field
//   - WebP: the EXIF UserComment field inside the RIFF EXIF chunk
//
// Reader implements catalog.MetadataReader:
//
//	reader := metadata.NewReader(true)
//	meta, err := reader.Read(ctx, "/outputs/txt2img-images/2024-01-01/00001.png")
//	if err != nil {
//	    // unreadable or unsupported file
//	}
//	if meta.HasParameters {
//	    fmt.Println(meta.Parameters)
//	}
//
// ReadPNGText can be used on its own to list every text chunk of a PNG
// stream.
package metadata
