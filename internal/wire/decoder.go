// Package wire turns raw byte streams into protocol frames. One decoder
// exists per backend protocol family: SSE with data: framing, NDJSON, and
// whole-body JSON. Decoders accept chunks of arbitrary size and retain
// any incomplete trailing fragment between calls.
package wire

// Frame is one complete protocol-level unit: a single SSE event payload,
// one NDJSON line, or the whole response body.
type Frame struct {
	// Payload is the raw JSON carried by the frame. Empty for terminal
	// sentinel frames.
	Payload []byte

	// Terminal marks an explicit end-of-stream sentinel such as the SSE
	// "data: [DONE]" line.
	Terminal bool
}

// Decoder reconstructs frames from arbitrarily chunked input.
type Decoder interface {
	// Feed consumes one chunk and returns the complete frames it
	// finished. A chunk may complete zero frames or several. Malformed
	// frames are dropped, never fatal.
	Feed(p []byte) []Frame

	// Finish flushes the decoder when the connection closes. A buffered
	// unterminated fragment is treated as a tolerated truncation: it is
	// decoded if salvageable and discarded otherwise.
	Finish() []Frame
}
