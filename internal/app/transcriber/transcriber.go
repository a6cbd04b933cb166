// Package transcriber defines the speech-to-text capability the HTTP layer
// depends on, plus the registry of backends that implement it.
package transcriber

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/samber/lo"
)

// GreedyBeamSize is beam search width 1: fastest decoding, chosen for latency.
const GreedyBeamSize = 1

// Options are the decoding parameters for one call.
type Options struct {
	BeamSize int
	Language string // empty means auto-detect
}

// Segment is one unit of decoded text.
type Segment struct {
	ID    int
	Start float64 // seconds
	End   float64 // seconds
	Text  string
}

// Info is metadata produced alongside the segments.
type Info struct {
	Language            string
	LanguageProbability float64
	Duration            time.Duration
}

// Transcription is the result of a Transcribe call. Segments is a finite,
// non-restartable sequence that may be produced while it is consumed;
// callers must range over it to the end (see Drain) so the backend can
// release what it holds.
type Transcription struct {
	Info     Info
	Segments iter.Seq2[Segment, error]
}

// Model is a loaded transcription model. Implementations are created once at
// process start and must be safe for concurrent use.
type Model interface {
	// Name returns the loaded model variant, e.g. "tiny.en".
	Name() string
	// Transcribe decodes the audio file at audioPath.
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Transcription, error)
}

// Closer is implemented by models that hold processes or other resources.
type Closer interface {
	Close() error
}

// Drain consumes the whole sequence. On error it keeps draining so the
// producer always reaches its end, and returns the first error seen.
func Drain(seq iter.Seq2[Segment, error]) ([]Segment, error) {
	var (
		segments []Segment
		firstErr error
	)
	for seg, err := range seq {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if firstErr == nil {
			segments = append(segments, seg)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return segments, nil
}

// JoinText joins segment texts with single spaces and trims the result.
func JoinText(segments []Segment) string {
	texts := lo.Map(segments, func(seg Segment, _ int) string { return seg.Text })
	return strings.TrimSpace(strings.Join(texts, " "))
}

// FromSlice returns a sequence that yields the given segments.
func FromSlice(segments []Segment) iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		for _, seg := range segments {
			if !yield(seg, nil) {
				return
			}
		}
	}
}
