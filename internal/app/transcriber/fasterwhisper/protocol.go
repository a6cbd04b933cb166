package fasterwhisper

import (
	"time"

	"whisper-stt/internal/app/transcriber"
)

// Message types written by the worker, one JSON object per line.
const (
	msgReady   = "ready"
	msgInfo    = "info"
	msgSegment = "segment"
	msgDone    = "done"
	msgError   = "error"
)

// request is one line written to a worker's stdin.
type request struct {
	Seq      uint64 `json:"seq"`
	Audio    string `json:"audio"`
	BeamSize int    `json:"beam_size"`
	Language string `json:"language,omitempty"`
}

// message is one line read from a worker's stdout. Fields are populated
// according to Type.
type message struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`

	// ready
	Model string `json:"model,omitempty"`

	// info
	Language            string  `json:"language,omitempty"`
	LanguageProbability float64 `json:"language_probability,omitempty"`
	Duration            float64 `json:"duration,omitempty"`

	// segment
	Index int     `json:"index,omitempty"`
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	Text  string  `json:"text,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

func (m message) info() transcriber.Info {
	return transcriber.Info{
		Language:            m.Language,
		LanguageProbability: m.LanguageProbability,
		Duration:            time.Duration(m.Duration * float64(time.Second)),
	}
}

func (m message) segment() transcriber.Segment {
	return transcriber.Segment{
		ID:    m.Index,
		Start: m.Start,
		End:   m.End,
		Text:  m.Text,
	}
}
