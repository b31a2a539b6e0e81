// Package stream drives the decode pipeline for one in-flight request:
// response body bytes flow through a wire.Decoder, a provider-specific
// Extractor, and the reasoning splitter, ending in a fully assembled
// result. The same pipeline serves streaming and whole-body responses;
// a non-streaming call simply produces exactly one delta.
package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/reasoning"
	"github.com/parley-llm/parley/internal/wire"
)

// Delta is the incremental contribution of one decoded frame.
type Delta struct {
	// Text is the text delta, empty for role-only or metadata frames.
	Text string

	// Done signals in-band end-of-stream (NDJSON done flag, whole-body
	// frames, finish reasons).
	Done bool

	// Context is the opaque continuation state carried by terminal
	// frames of stateful backends, nil otherwise.
	Context json.RawMessage
}

// Extractor pulls the delta out of one provider-specific frame payload.
// It must be a pure function of the frame: extraction paths differ per
// backend but never depend on prior frames.
type Extractor func(payload []byte) (Delta, error)

// Pipeline wires a decoder, an extractor, and the reasoning splitter.
type Pipeline struct {
	Decoder wire.Decoder
	Extract Extractor
	Tag     domain.ReasoningTag
	Sink    domain.TokenSink
	Logger  *slog.Logger

	// Strict makes a frame extraction failure fatal. Whole-body
	// responses set this: a single unparseable body is a failed request,
	// while one bad frame among many is skipped.
	Strict bool
}

// Result is the finalized stream state.
type Result struct {
	Answer          string
	ReasoningBlocks []string
	Context         json.RawMessage
	Truncated       bool
}

// Run consumes body until end-of-stream, cancellation, or a fatal error.
// On cancellation the pipeline stops consuming, drains its buffered
// state deterministically, and returns the partial result flagged
// truncated. A network failure after content was produced also yields
// the truncated partial result; before any content it is an error.
func (p *Pipeline) Run(ctx context.Context, body io.Reader) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	splitter := reasoning.NewSplitter(p.Tag, p.Sink)
	res := &Result{}

	var (
		finished  bool
		truncated bool
		readErr   error
	)

	buf := make([]byte, 32*1024)
	for !finished {
		if ctx.Err() != nil {
			truncated = true
			break
		}
		n, err := body.Read(buf)
		if n > 0 {
			done, ferr := p.consume(p.Decoder.Feed(buf[:n]), splitter, res, logger)
			if ferr != nil {
				return nil, ferr
			}
			finished = finished || done
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if ctx.Err() != nil {
				truncated = true
				break
			}
			readErr = err
			break
		}
	}

	// Finalize buffered fragments even after an abort so the result is
	// never left half-assembled.
	if !finished {
		if _, ferr := p.consume(p.Decoder.Finish(), splitter, res, logger); ferr != nil {
			return nil, ferr
		}
	}

	answer, blocks := splitter.Finish()
	res.Answer = answer
	res.ReasoningBlocks = blocks
	res.Truncated = truncated

	// A cancellation that beat the first delta produced nothing worth
	// keeping; only cancellation after content yields a partial result.
	if truncated && answer == "" && len(blocks) == 0 {
		return nil, domain.ErrCancelled("request cancelled before any content arrived")
	}

	if readErr != nil {
		if answer == "" && len(blocks) == 0 {
			return nil, domain.ErrNetwork("stream read failed", readErr)
		}
		logger.Warn("stream interrupted, returning partial result",
			slog.String("error", readErr.Error()))
		res.Truncated = true
	}
	return res, nil
}

func (p *Pipeline) consume(frames []wire.Frame, splitter *reasoning.Splitter, res *Result, logger *slog.Logger) (bool, error) {
	for _, f := range frames {
		if f.Terminal {
			return true, nil
		}
		delta, err := p.Extract(f.Payload)
		if err != nil {
			if p.Strict {
				return false, domain.ErrProtocol("unparseable response body", err)
			}
			// Per-frame protocol errors never abort the stream.
			logger.Debug("skipping unrecognized frame", slog.String("error", err.Error()))
			continue
		}
		if delta.Context != nil {
			res.Context = delta.Context
		}
		splitter.Write(delta.Text)
		if delta.Done {
			return true, nil
		}
	}
	return false, nil
}
