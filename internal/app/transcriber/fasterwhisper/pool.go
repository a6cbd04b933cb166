// Package fasterwhisper runs faster-whisper models in a pool of persistent
// Python worker processes. Each worker loads the model once at startup and
// then serves requests over a JSON-lines protocol on stdin/stdout, streaming
// segments back as they are decoded.
package fasterwhisper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/app/transcriber"
)

const respawnBackoff = 5 * time.Second

// Launcher returns a new, unstarted worker command.
type Launcher func() *exec.Cmd

// PoolConfig configures a worker pool.
type PoolConfig struct {
	Name         string // model variant reported by Name()
	Workers      int
	StartTimeout time.Duration
	Launch       Launcher
}

// Pool is a transcriber.Model backed by persistent worker processes. The
// number of workers bounds the number of concurrent transcriptions; callers
// beyond that wait for a worker to come back.
type Pool struct {
	cfg    PoolConfig
	idle   chan *worker
	closed chan struct{}
	logger *zap.Logger

	seq       atomic.Uint64
	nextID    atomic.Int64
	mu        sync.Mutex // orders release against Close
	closeOnce sync.Once
	cleanup   func() error
}

// NewPool starts every worker and waits until all of them report ready.
func NewPool(cfg PoolConfig, logger *zap.Logger) (*Pool, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	p := &Pool{
		cfg:    cfg,
		idle:   make(chan *worker, cfg.Workers),
		closed: make(chan struct{}),
		logger: logger,
	}

	workers := make([]*worker, cfg.Workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			w, err := p.spawn()
			if err != nil {
				return err
			}
			workers[i] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, w := range workers {
			if w != nil {
				w.kill()
			}
		}
		return nil, err
	}

	for _, w := range workers {
		p.idle <- w
	}
	return p, nil
}

func (p *Pool) spawn() (*worker, error) {
	id := int(p.nextID.Add(1))
	return startWorker(id, p.cfg.Launch(), p.cfg.StartTimeout, p.logger)
}

// Name returns the loaded model variant.
func (p *Pool) Name() string {
	return p.cfg.Name
}

// Transcribe sends the file to an idle worker. The returned segments are read
// from that worker as they arrive; the worker goes back to the pool once the
// sequence has been consumed to the end.
func (p *Pool) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.Transcription, error) {
	w, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	seq := p.seq.Add(1)
	req := request{
		Seq:      seq,
		Audio:    audioPath,
		BeamSize: opts.BeamSize,
		Language: opts.Language,
	}

	if err := w.send(req); err != nil {
		p.discard(w)
		return nil, err
	}

	msg, err := w.next(ctx)
	if err != nil {
		p.discard(w)
		return nil, err
	}
	if msg.Seq != seq {
		p.discard(w)
		return nil, fmt.Errorf("worker %d answered request %d while serving %d", w.id, msg.Seq, seq)
	}

	switch msg.Type {
	case msgError:
		p.release(w)
		return nil, errors.New(msg.Message)
	case msgInfo:
	default:
		p.discard(w)
		return nil, fmt.Errorf("worker %d: unexpected %q before info", w.id, msg.Type)
	}

	return &transcriber.Transcription{
		Info:     msg.info(),
		Segments: p.segments(ctx, w, seq),
	}, nil
}

func (p *Pool) segments(ctx context.Context, w *worker, seq uint64) func(yield func(transcriber.Segment, error) bool) {
	var consumed atomic.Bool

	return func(yield func(transcriber.Segment, error) bool) {
		if consumed.Swap(true) {
			yield(transcriber.Segment{}, errors.New("segments already consumed"))
			return
		}

		healthy := false
		defer func() {
			if healthy {
				p.release(w)
			} else {
				p.discard(w)
			}
		}()

		// after the consumer stops early the rest of the stream is still read
		// so the worker is left at a request boundary
		stopped := false
		emit := func(seg transcriber.Segment, err error) {
			if !stopped && !yield(seg, err) {
				stopped = true
			}
		}

		for {
			msg, err := w.next(ctx)
			if err != nil {
				emit(transcriber.Segment{}, err)
				return
			}
			if msg.Seq != seq {
				emit(transcriber.Segment{}, fmt.Errorf("worker %d answered request %d while serving %d", w.id, msg.Seq, seq))
				return
			}

			switch msg.Type {
			case msgSegment:
				emit(msg.segment(), nil)
			case msgDone:
				healthy = true
				return
			case msgError:
				healthy = true
				emit(transcriber.Segment{}, errors.New(msg.Message))
				return
			default:
				emit(transcriber.Segment{}, fmt.Errorf("worker %d: unexpected %q in segment stream", w.id, msg.Type))
				return
			}
		}
	}
}

func (p *Pool) acquire(ctx context.Context) (*worker, error) {
	select {
	case <-p.closed:
		return nil, apperrors.ErrPoolClosed
	default:
	}

	select {
	case w := <-p.idle:
		return w, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, apperrors.ErrPoolClosed
	}
}

// release returns a healthy worker to the pool.
func (p *Pool) release(w *worker) {
	p.mu.Lock()
	select {
	case <-p.closed:
		p.mu.Unlock()
		w.stop()
		return
	default:
	}
	p.idle <- w
	p.mu.Unlock()
}

// discard kills a worker whose state is unknown and starts a replacement.
func (p *Pool) discard(w *worker) {
	p.logger.Warn("Replacing worker", zap.Int("worker", w.id))
	w.kill()
	go p.respawn()
}

func (p *Pool) respawn() {
	for {
		select {
		case <-p.closed:
			return
		default:
		}

		w, err := p.spawn()
		if err == nil {
			p.release(w)
			return
		}
		p.logger.Error("Failed to start replacement worker", zap.Error(err))

		select {
		case <-p.closed:
			return
		case <-time.After(respawnBackoff):
		}
	}
}

// Close stops idle workers; busy workers are stopped when they are released.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		close(p.closed)
		p.mu.Unlock()

	drain:
		for {
			select {
			case w := <-p.idle:
				w.stop()
			default:
				break drain
			}
		}

		if p.cleanup != nil {
			err = p.cleanup()
		}
	})
	return err
}
