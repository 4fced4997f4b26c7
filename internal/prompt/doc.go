// Package prompt normalizes free-text generation prompts into tag lists.
//
// Prompts are written by hand with emphasis weights, grouping parentheses and
// embedding/LoRA references mixed into comma-separated text:
//
//	detailed face, smile, (long hair, pink hair:1.1), <lora:style:0.8>
//
// Tokenize turns that into a flat list of tags:
//
//	[detailed face smile long hair pink hair <lora:style:>]
//
// The normalizer is a heuristic, not a grammar. It is deterministic and
// idempotent: tokenizing the comma-joined output yields the same tags.
package prompt
