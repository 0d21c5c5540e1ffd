package engine

import (
	"encoding/json"
	"io"
)

// Stream is an ordered, finite sequence of response chunks from a streaming
// query. Chunks arrive as concatenated JSON values and are decoded one at a
// time; the stream ends when the remote side closes the connection.
type Stream struct {
	body io.ReadCloser
	dec  *json.Decoder
}

// NewStream wraps a reader of concatenated JSON values. Exposed so callers
// can substitute their own transport in tests.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, dec: json.NewDecoder(body)}
}

// Next returns the next chunk in arrival order. It returns io.EOF when the
// server has closed the stream.
func (s *Stream) Next() (map[string]interface{}, error) {
	var chunk map[string]interface{}
	if err := s.dec.Decode(&chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// Close releases the underlying response body. Safe to call after EOF.
func (s *Stream) Close() error {
	return s.body.Close()
}

// ChunkText extracts the first text part of a chunk, the shape the deployed
// agent uses for incremental model output. Returns "" when the chunk carries
// no text.
func ChunkText(chunk map[string]interface{}) string {
	content, ok := chunk["content"].(map[string]interface{})
	if !ok {
		return ""
	}
	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return ""
	}
	first, ok := parts[0].(map[string]interface{})
	if !ok {
		return ""
	}
	text, _ := first["text"].(string)
	return text
}
