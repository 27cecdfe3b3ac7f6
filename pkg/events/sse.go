package events

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Encoder writes events to a server-sent-event stream. When the
// underlying writer supports flushing, every event is flushed so
// clients observe progress live.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder creates an SSE encoder over the writer
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// Encode writes one event as a `data: <JSON>` frame
func (e *Encoder) Encode(ev Event) error {
	data, err := Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Decoder reads events back out of a server-sent-event stream
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates an SSE decoder over the reader
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next event in the stream, or io.EOF when the stream
// ends. Non-data SSE fields and comments are skipped.
func (d *Decoder) Next() (Event, error) {
	var data bytes.Buffer

	for d.scanner.Scan() {
		line := d.scanner.Text()

		// Blank line dispatches the accumulated frame
		if strings.TrimSpace(line) == "" {
			if data.Len() > 0 {
				return Unmarshal(data.Bytes())
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
		// event:/id:/retry: fields and ":" comments are ignored
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	if data.Len() > 0 {
		return Unmarshal(data.Bytes())
	}
	return nil, io.EOF
}
