package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// GenerationInfo is an ordered string mapping of generation parameters.
//
// Keys keep the order in which they were first set, so the detail view shows
// them the way the generator wrote them. Setting an existing key replaces its
// value in place.
type GenerationInfo struct {
	keys   []string
	values map[string]string
}

// NewGenerationInfo returns an empty GenerationInfo.
func NewGenerationInfo() *GenerationInfo {
	return &GenerationInfo{values: make(map[string]string)}
}

// Set stores value under key.
func (g *GenerationInfo) Set(key, value string) {
	if g.values == nil {
		g.values = make(map[string]string)
	}
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = value
}

// Get returns the value stored under key.
func (g *GenerationInfo) Get(key string) (string, bool) {
	if g == nil {
		return "", false
	}
	v, ok := g.values[key]
	return v, ok
}

// Value returns the value stored under key, or "" if absent.
func (g *GenerationInfo) Value(key string) string {
	v, _ := g.Get(key)
	return v
}

// Keys returns the keys in insertion order.
func (g *GenerationInfo) Keys() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Len returns the number of keys.
func (g *GenerationInfo) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Map returns a copy of the pairs as a plain map.
func (g *GenerationInfo) Map() map[string]string {
	out := make(map[string]string, g.Len())
	if g == nil {
		return out
	}
	for k, v := range g.values {
		out[k] = v
	}
	return out
}

// String renders the pairs as "Key: Value, Key: Value".
func (g *GenerationInfo) String() string {
	if g.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, len(g.keys))
	for _, k := range g.keys {
		parts = append(parts, k+": "+g.values[k])
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON encodes the pairs as a JSON object in insertion order.
func (g *GenerationInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(g.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
