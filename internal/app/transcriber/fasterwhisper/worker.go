package fasterwhisper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	apperrors "whisper-stt/internal/app/errors"
)

const (
	maxLineBytes = 1 << 20
	stopGrace    = 5 * time.Second
)

// worker is one Python process holding a loaded model. A worker serves one
// request at a time; ownership is handed around through the pool.
type worker struct {
	id     int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	msgs   chan message
	exited chan struct{}
	err    error // set before exited is closed
	logger *zap.Logger
}

// startWorker launches cmd and waits for its ready line.
func startWorker(id int, cmd *exec.Cmd, startTimeout time.Duration, logger *zap.Logger) (*worker, error) {
	logger = logger.With(zap.Int("worker", id))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %w", apperrors.ErrWorkerStartup, err)
	}

	// The child writes straight into an os.Pipe so Wait never races our reads.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout: %w", apperrors.ErrWorkerStartup, err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = &zapio.Writer{Log: logger.Named("stderr"), Level: zap.DebugLevel}

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkerStartup, err)
	}
	stdoutW.Close()

	w := &worker{
		id:     id,
		cmd:    cmd,
		stdin:  stdin,
		msgs:   make(chan message),
		exited: make(chan struct{}),
		logger: logger,
	}

	go w.readLoop(stdoutR)
	go func() {
		w.err = cmd.Wait()
		close(w.exited)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	msg, err := w.next(ctx)
	if err != nil {
		w.kill()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkerStartup, err)
	}
	if msg.Type != msgReady {
		w.kill()
		return nil, fmt.Errorf("%w: expected ready, got %q", apperrors.ErrWorkerStartup, msg.Type)
	}

	logger.Info("Worker ready", zap.Int("pid", cmd.Process.Pid), zap.String("model", msg.Model))
	return w, nil
}

func (w *worker) readLoop(r io.ReadCloser) {
	defer r.Close()
	defer close(w.msgs)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			w.logger.Warn("Ignoring malformed worker output", zap.ByteString("line", scanner.Bytes()))
			continue
		}
		select {
		case w.msgs <- msg:
		case <-w.exited:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		w.logger.Warn("Worker stdout closed", zap.Error(err))
	}
}

// send writes one request line.
func (w *worker) send(req request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := w.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrWorkerExited, err)
	}
	return nil
}

// next returns the next message, or an error if ctx ends or the process exits.
func (w *worker) next(ctx context.Context) (message, error) {
	select {
	case msg, ok := <-w.msgs:
		if !ok {
			<-w.exited
			if w.err != nil {
				return message{}, fmt.Errorf("%w: %w", apperrors.ErrWorkerExited, w.err)
			}
			return message{}, apperrors.ErrWorkerExited
		}
		return msg, nil
	case <-ctx.Done():
		return message{}, ctx.Err()
	}
}

// stop asks the worker to exit by closing stdin, killing it after a grace period.
func (w *worker) stop() {
	w.stdin.Close()
	select {
	case <-w.exited:
	case <-time.After(stopGrace):
		w.kill()
	}
}

// kill terminates the process immediately and waits for it to be reaped.
func (w *worker) kill() {
	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	<-w.exited
}
