// Package whispercpp transcribes with the whisper.cpp command line tool.
// Each request runs whisper-cli once and segments are parsed from its stdout
// as they are printed.
package whispercpp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/app/transcriber"
	"whisper-stt/internal/config"
)

func init() {
	transcriber.Register(config.BackendWhisperCpp, New)
}

// Transcriber runs whisper-cli against a ggml model file.
type Transcriber struct {
	variant   string
	binary    string
	modelPath string
	useGPU    bool
	threads   int
	language  string
	logger    *zap.Logger

	// command builds the process; replaced in tests
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New resolves the binary and model file from cfg.
func New(cfg config.ModelConfig, logger *zap.Logger) (transcriber.Model, error) {
	wc := cfg.WhisperCpp

	binary, err := exec.LookPath(wc.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: whisper.cpp binary %q not found: %w", apperrors.ErrBackendConfig, wc.Binary, err)
	}

	modelPath, err := ResolveModelPath(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Using whisper.cpp model",
		zap.String("binary", binary),
		zap.String("model", modelPath),
		zap.String("device", cfg.Device))

	return &Transcriber{
		variant:   cfg.Variant,
		binary:    binary,
		modelPath: modelPath,
		useGPU:    cfg.Device != "cpu",
		threads:   wc.Threads,
		language:  cfg.Language,
		logger:    logger,
		command:   exec.CommandContext,
	}, nil
}

// ResolveModelPath returns the configured model file, or looks up
// ggml-<variant>.bin in the model directory. int8 compute types prefer the
// q8_0 quantised file when it is present.
func ResolveModelPath(cfg config.ModelConfig) (string, error) {
	wc := cfg.WhisperCpp
	if wc.ModelPath != "" {
		if _, err := os.Stat(wc.ModelPath); err != nil {
			return "", fmt.Errorf("%w: model file: %w", apperrors.ErrBackendConfig, err)
		}
		return wc.ModelPath, nil
	}

	var candidates []string
	if strings.HasPrefix(cfg.ComputeType, "int8") {
		candidates = append(candidates, filepath.Join(wc.ModelDir, "ggml-"+cfg.Variant+"-q8_0.bin"))
	}
	candidates = append(candidates, filepath.Join(wc.ModelDir, "ggml-"+cfg.Variant+".bin"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no model file for %q in %s (tried %s)",
		apperrors.ErrBackendConfig, cfg.Variant, wc.ModelDir, strings.Join(candidates, ", "))
}

// Name returns the model variant.
func (t *Transcriber) Name() string {
	return t.variant
}

// Transcribe checks the audio file and returns a transcription whose
// segments run whisper-cli when iterated.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.Transcription, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, err
	}

	language := opts.Language
	if language == "" {
		language = t.language
	}

	args := t.args(audioPath, opts.BeamSize, language)
	t.logger.Debug("Running whisper.cpp", zap.String("binary", t.binary), zap.Strings("args", args))

	return &transcriber.Transcription{
		Info:     transcriber.Info{Language: language},
		Segments: t.segments(ctx, args),
	}, nil
}

func (t *Transcriber) args(audioPath string, beamSize int, language string) []string {
	if beamSize < 1 {
		beamSize = transcriber.GreedyBeamSize
	}
	if language == "" {
		language = "auto"
	}

	args := []string{
		"-m", t.modelPath,
		"-f", audioPath,
		"-bs", strconv.Itoa(beamSize),
		"-l", language,
		"-np",
	}
	if !t.useGPU {
		args = append(args, "-ng")
	}
	if t.threads > 0 {
		args = append(args, "-t", strconv.Itoa(t.threads))
	}
	return args
}

func (t *Transcriber) segments(ctx context.Context, args []string) func(yield func(transcriber.Segment, error) bool) {
	var consumed atomic.Bool

	return func(yield func(transcriber.Segment, error) bool) {
		if consumed.Swap(true) {
			yield(transcriber.Segment{}, errors.New("segments already consumed"))
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var stderr tailBuffer
		cmd := t.command(ctx, t.binary, args...)
		cmd.Stderr = &stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield(transcriber.Segment{}, err)
			return
		}
		if err := cmd.Start(); err != nil {
			yield(transcriber.Segment{}, fmt.Errorf("failed to start whisper.cpp: %w", err))
			return
		}

		id := 0
		stopped := false
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			seg, ok := ParseLine(scanner.Text())
			if !ok {
				continue
			}
			seg.ID = id
			id++
			if !yield(seg, nil) {
				stopped = true
				break
			}
		}

		if stopped {
			cancel()
			cmd.Wait()
			return
		}
		if err := scanner.Err(); err != nil {
			cancel()
			cmd.Wait()
			yield(transcriber.Segment{}, fmt.Errorf("failed to read whisper.cpp output: %w", err))
			return
		}

		if err := cmd.Wait(); err != nil {
			if ctx.Err() != nil {
				yield(transcriber.Segment{}, ctx.Err())
				return
			}
			msg := stderr.lastLine()
			if msg == "" {
				msg = err.Error()
			}
			yield(transcriber.Segment{}, fmt.Errorf("whisper.cpp failed: %s", msg))
		}
	}
}

const maxLineBytes = 1 << 20

var lineRe = regexp.MustCompile(`^\[(\d+):(\d{2}):(\d{2})[.,](\d{3}) --> (\d+):(\d{2}):(\d{2})[.,](\d{3})\]\s*(.*)$`)

// ParseLine parses one whisper-cli output line such as
// "[00:00:00.000 --> 00:00:02.000]   Hello world." into a segment.
func ParseLine(line string) (transcriber.Segment, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return transcriber.Segment{}, false
	}
	return transcriber.Segment{
		Start: timestamp(m[1:5]),
		End:   timestamp(m[5:9]),
		Text:  strings.TrimSpace(m[9]),
	}, true
}

func timestamp(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return float64(h*3600+m*60+s) + float64(ms)/1000
}

// tailBuffer keeps the last few KB written to it.
type tailBuffer struct {
	buf []byte
}

const tailSize = 4096

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if len(b.buf) > tailSize {
		b.buf = b.buf[len(b.buf)-tailSize:]
	}
	return len(p), nil
}

func (b *tailBuffer) lastLine() string {
	lines := strings.Split(strings.TrimSpace(string(b.buf)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
