package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DoneSentinel is the literal payload that terminates a stream.
const DoneSentinel = "[DONE]"

// Writer writes Server-Sent Events to an HTTP response. Every frame is a
// `data: <json>` line; the event type lives inside the JSON payload.
type Writer struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

// NewWriter creates a new SSE writer and sets the streaming headers.
// Callers must not write a status or body before this point.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &Writer{
		writer:  w,
		flusher: flusher,
	}, nil
}

// Emit writes one event as a data frame and flushes it.
func (w *Writer) Emit(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(w.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// Done writes the [DONE] sentinel that terminates the stream.
func (w *Writer) Done() error {
	if _, err := fmt.Fprintf(w.writer, "data: %s\n\n", DoneSentinel); err != nil {
		return fmt.Errorf("failed to write done sentinel: %w", err)
	}
	w.flusher.Flush()
	return nil
}
