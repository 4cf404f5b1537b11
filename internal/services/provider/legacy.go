package provider

import "strings"

const (
	legacyReasoningPrefix = "reasoning:"
	legacyContentPrefix   = "content:"
)

// LegacyReader adapts an upstream that still emits prefix-tagged string
// chunks to the tagged StreamReader interface.
type LegacyReader struct {
	next  func() (string, error)
	close func() error
}

// NewLegacyReader wraps a string-chunk source. next returns io.EOF when
// the source is exhausted; close may be nil.
func NewLegacyReader(next func() (string, error), close func() error) *LegacyReader {
	return &LegacyReader{next: next, close: close}
}

// Read returns the next chunk, tagged.
func (r *LegacyReader) Read() (*StreamChunk, error) {
	raw, err := r.next()
	if err != nil {
		return nil, err
	}
	return ParseLegacyChunk(raw), nil
}

// Close releases the underlying source.
func (r *LegacyReader) Close() error {
	if r.close != nil {
		return r.close()
	}
	return nil
}

// ParseLegacyChunk converts a prefix-tagged string chunk from the old wire
// protocol into a tagged StreamChunk. Unprefixed strings are treated as
// content for backward compatibility.
func ParseLegacyChunk(raw string) *StreamChunk {
	switch {
	case strings.HasPrefix(raw, legacyReasoningPrefix):
		return &StreamChunk{
			Type:    ChunkTypeReasoning,
			Content: strings.TrimPrefix(raw, legacyReasoningPrefix),
		}
	case strings.HasPrefix(raw, legacyContentPrefix):
		return &StreamChunk{
			Type:    ChunkTypeContent,
			Content: strings.TrimPrefix(raw, legacyContentPrefix),
		}
	default:
		return &StreamChunk{
			Type:    ChunkTypeContent,
			Content: raw,
		}
	}
}
