// Package annotation parses the "parameters" text annotation that image
// generators embed in their output files.
//
// An annotation has a free-text head and a structured tail:
//
//	masterpiece, 1girl, (long hair:1.1)
//	Negative prompt: lowres, bad hands
//	Steps: 20, Sampler: Euler a, CFG scale: 7, Seed: 1, Size: 512x512, Model: anything_v3
//
// Parse splits the head into positive and negative prompt text and tokenizes both,
// then decodes the tail with ParseGenerationInfo.
//
// # Structured tail
//
// The tail is a comma-separated list of "Key: Value" pairs starting at "Steps: ".
// Values may hold quoted strings or brace-delimited JSON; separators inside them
// are not pair boundaries. Hash lists ("Lora hashes", "TI hashes", "Hashes") and
// everything after them are dropped before decoding.
//
// # Errors
//
// ErrNoParameters marks an annotation that carries no generation data (blank or
// the literal "None"). ErrMissingSteps and ErrMalformed mark annotations that
// cannot be decoded. Callers building a catalog degrade the record to defaults
// on any of them.
package annotation
