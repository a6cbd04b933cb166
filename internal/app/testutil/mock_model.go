package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"whisper-stt/internal/app/transcriber"
)

// MockModel is a mock implementation of transcriber.Model
type MockModel struct {
	mock.Mock
}

func NewMockModel(t *testing.T) *MockModel {
	m := &MockModel{}
	m.Test(t)
	return m
}

func (m *MockModel) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockModel) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.Transcription, error) {
	args := m.Called(ctx, audioPath, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transcriber.Transcription), args.Error(1)
}

// Segments returns a transcription yielding one segment per text.
func Segments(texts ...string) *transcriber.Transcription {
	segments := make([]transcriber.Segment, len(texts))
	for i, text := range texts {
		segments[i] = transcriber.Segment{ID: i, Start: float64(i), End: float64(i + 1), Text: text}
	}
	return &transcriber.Transcription{
		Info:     transcriber.Info{Language: "en", LanguageProbability: 1},
		Segments: transcriber.FromSlice(segments),
	}
}

// FailingSegments returns a transcription whose sequence yields the given
// texts and then fails with message.
func FailingSegments(message string, texts ...string) *transcriber.Transcription {
	ok := Segments(texts...)
	return &transcriber.Transcription{
		Info: ok.Info,
		Segments: func(yield func(transcriber.Segment, error) bool) {
			for seg, err := range ok.Segments {
				if !yield(seg, err) {
					return
				}
			}
			yield(transcriber.Segment{}, errors.New(message))
		},
	}
}
