// Package config provides configuration management for sd-gallery.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Validation before a catalog build
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Scans ~/stable-diffusion-webui/outputs for .png files
//	// Eight concurrent metadata readers
//	// At most 100 images displayed, shuffled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The file format follows the extension: .yaml and .yml are YAML, anything
// else is JSON. Keys absent from the file keep their defaults.
//
// # Saving Settings
//
//	settings.OutputsPath = "/data/sd/outputs"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - The outputs root and the image extensions to index
//   - The folder name marker for upscaler output (extras)
//   - Metadata reader concurrency
//   - Display sampling
//   - Export format
package config
