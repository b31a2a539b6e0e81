// Package reasoning separates an interleaved reasoning sub-stream from
// user-visible answer text while tokens are still arriving. The scanner
// is tolerant of tag fragments split across chunk boundaries: feeding it
// one byte at a time classifies identically to feeding the whole message
// at once.
package reasoning

import (
	"strings"

	"github.com/parley-llm/parley/internal/domain"
)

// Splitter classifies an unbounded incoming text stream into answer text
// and discrete reasoning blocks delimited by a header/footer tag pair.
// It is used identically by the streaming and non-streaming paths.
type Splitter struct {
	header string
	footer string

	pending string
	inBlock bool

	answer strings.Builder
	block  strings.Builder
	blocks []string

	sink domain.TokenSink
}

// NewSplitter creates a splitter for the given tag pair. sink may be nil
// when only the final assembled result is wanted.
func NewSplitter(tag domain.ReasoningTag, sink domain.TokenSink) *Splitter {
	if tag.IsZero() {
		tag = domain.DefaultReasoningTag()
	}
	return &Splitter{header: tag.Header, footer: tag.Footer, sink: sink}
}

// Write classifies one incoming delta. Text is emitted to the sink as
// soon as it is classified rather than batched.
func (s *Splitter) Write(delta string) {
	if delta == "" && s.pending == "" {
		return
	}
	b := s.pending + delta
	s.pending = ""

	for {
		want := s.header
		if s.inBlock {
			want = s.footer
		}

		if i := strings.Index(b, want); i >= 0 {
			s.emit(b[:i])
			b = b[i+len(want):]
			if s.inBlock {
				s.closeBlock()
			} else {
				s.inBlock = true
			}
			continue
		}

		// The tag may have started but not completed at the end of this
		// chunk. Hold the longest suffix that is a prefix of the expected
		// tag and flush everything before it.
		if hold := suffixPrefixLen(b, want); hold > 0 {
			s.pending = b[len(b)-hold:]
			b = b[:len(b)-hold]
		}
		s.emit(b)
		return
	}
}

// Finish flushes held-back state and returns the final classification.
// A reasoning block left open by a truncated stream is kept rather than
// discarded, so no model output is silently lost.
func (s *Splitter) Finish() (answer string, blocks []string) {
	if s.pending != "" {
		s.emit(s.pending)
		s.pending = ""
	}
	if s.inBlock {
		s.closeBlock()
	}
	return s.answer.String(), s.blocks
}

// Answer returns the answer text classified so far.
func (s *Splitter) Answer() string {
	return s.answer.String()
}

// Emitted reports whether any text has been classified yet.
func (s *Splitter) Emitted() bool {
	return s.answer.Len() > 0 || s.block.Len() > 0 || len(s.blocks) > 0
}

func (s *Splitter) emit(text string) {
	if text == "" {
		return
	}
	kind := domain.KindAnswer
	if s.inBlock {
		kind = domain.KindReasoning
		s.block.WriteString(text)
	} else {
		s.answer.WriteString(text)
	}
	if s.sink != nil {
		s.sink(domain.StreamEvent{Kind: kind, Text: text})
	}
}

func (s *Splitter) closeBlock() {
	s.blocks = append(s.blocks, s.block.String())
	s.block.Reset()
	s.inBlock = false
}

// suffixPrefixLen returns the length of the longest proper suffix of b
// that is a prefix of tag.
func suffixPrefixLen(b, tag string) int {
	max := len(tag) - 1
	if max > len(b) {
		max = len(b)
	}
	for k := max; k > 0; k-- {
		if b[len(b)-k:] == tag[:k] {
			return k
		}
	}
	return 0
}
