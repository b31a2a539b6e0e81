package wire

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// NDJSONDecoder decodes newline-delimited JSON streams: each complete
// line is one frame. End-of-stream is signalled in-band by a done flag
// inside the final object, which the extractor recognizes.
type NDJSONDecoder struct {
	buf    bytes.Buffer
	logger *slog.Logger
}

// NewNDJSONDecoder creates an NDJSON decoder.
func NewNDJSONDecoder(logger *slog.Logger) *NDJSONDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &NDJSONDecoder{logger: logger}
}

func (d *NDJSONDecoder) Feed(p []byte) []Frame {
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

		if f, ok := d.decodeLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

func (d *NDJSONDecoder) Finish() []Frame {
	if d.buf.Len() == 0 {
		return nil
	}
	line := d.buf.String()
	d.buf.Reset()
	if f, ok := d.decodeLine(line); ok {
		return []Frame{f}
	}
	return nil
}

func (d *NDJSONDecoder) decodeLine(line string) (Frame, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Frame{}, false
	}
	if !json.Valid([]byte(line)) {
		d.logger.Debug("dropping malformed NDJSON line", slog.Int("len", len(line)))
		return Frame{}, false
	}
	return Frame{Payload: []byte(line)}, true
}
