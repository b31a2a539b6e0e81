package wire

import "bytes"

// BodyDecoder buffers the complete HTTP body and yields it as a single
// synthetic frame on Finish. It serves backends with no partial output:
// from the pipeline's perspective the response is a stream with exactly
// one delta.
type BodyDecoder struct {
	buf bytes.Buffer
}

// NewBodyDecoder creates a whole-body decoder.
func NewBodyDecoder() *BodyDecoder {
	return &BodyDecoder{}
}

func (d *BodyDecoder) Feed(p []byte) []Frame {
	d.buf.Write(p)
	return nil
}

func (d *BodyDecoder) Finish() []Frame {
	if d.buf.Len() == 0 {
		return nil
	}
	body := make([]byte, d.buf.Len())
	copy(body, d.buf.Bytes())
	d.buf.Reset()
	return []Frame{{Payload: body}}
}
