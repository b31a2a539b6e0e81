package wire

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// terminalSentinel ends an SSE stream.
const terminalSentinel = "[DONE]"

// SSEDecoder decodes Server-Sent-Events streams that carry JSON payloads
// on "data:" lines. Blank lines, comment lines (leading ':'), and field
// lines other than data (e.g. "event:") are ignored; the JSON inside the
// data line is what identifies the event for every supported backend.
type SSEDecoder struct {
	buf    bytes.Buffer
	done   bool
	logger *slog.Logger
}

// NewSSEDecoder creates an SSE decoder.
func NewSSEDecoder(logger *slog.Logger) *SSEDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEDecoder{logger: logger}
}

func (d *SSEDecoder) Feed(p []byte) []Frame {
	if d.done {
		return nil
	}
	d.buf.Write(p)

	var frames []Frame
	for {
		raw := d.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			break
		}
		line := string(raw[:i])
		d.buf.Next(i + 1)

		f, ok := d.decodeLine(line)
		if !ok {
			continue
		}
		frames = append(frames, f)
		if f.Terminal {
			d.done = true
			break
		}
	}
	return frames
}

func (d *SSEDecoder) Finish() []Frame {
	if d.done || d.buf.Len() == 0 {
		return nil
	}
	// The connection closed mid-line. Salvage the fragment if it happens
	// to be a complete data line; otherwise tolerate the truncation.
	line := d.buf.String()
	d.buf.Reset()
	if f, ok := d.decodeLine(line); ok {
		return []Frame{f}
	}
	return nil
}

func (d *SSEDecoder) decodeLine(line string) (Frame, bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" || strings.HasPrefix(line, ":") {
		return Frame{}, false
	}

	data, ok := strings.CutPrefix(line, "data:")
	if !ok {
		// event:, id:, retry: and friends carry no payload we need.
		return Frame{}, false
	}
	data = strings.TrimPrefix(data, " ")

	if data == terminalSentinel {
		return Frame{Terminal: true}, true
	}

	if !json.Valid([]byte(data)) {
		// One bad frame must not abort the stream.
		d.logger.Debug("dropping malformed SSE frame", slog.Int("len", len(data)))
		return Frame{}, false
	}
	return Frame{Payload: []byte(data)}, true
}
