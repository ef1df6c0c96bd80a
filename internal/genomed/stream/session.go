package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"

	"genomed/pkg/logger"
)

// DefaultChunkSize is used when a request does not specify a chunk size.
const DefaultChunkSize = 1024 * 1024 // 1MiB

// Config describes one file-read request.
type Config struct {
	Path string
	// ChunkSize in bytes; DefaultChunkSize when zero.
	ChunkSize int
	// EventBuffer is the event channel capacity; a small default when zero.
	EventBuffer int
}

// Session drives one streaming read of a file. It feeds the chunk reader into
// the line assembler and interleaves line batches with progress snapshots,
// ending with exactly one terminal event.
type Session struct {
	id        string
	path      string
	chunkSize int
	buffer    int
	totalSize int64

	consumed  int64
	lineCount int64

	once   sync.Once
	logger *logger.Logger
}

// NewSession validates the request and stats the file up front, so a missing
// or unreadable file is rejected before any event is emitted.
func NewSession(cfg Config) (*Session, error) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.EventBuffer < 1 {
		cfg.EventBuffer = 16
	}

	// Probe stat+open now; the run loop opens its own reader.
	probe, err := OpenChunkReader(cfg.Path, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}
	totalSize := probe.TotalSize()
	_ = probe.Close()

	id := ulid.Make().String()

	return &Session{
		id:        id,
		path:      cfg.Path,
		chunkSize: cfg.ChunkSize,
		buffer:    cfg.EventBuffer,
		totalSize: totalSize,
		logger:    logger.WithFields("component", "stream-session", "sessionId", id),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// TotalBytes returns the file size captured when the session was created.
func (s *Session) TotalBytes() int64 {
	return s.totalSize
}

// Events starts the producer and returns its event channel. The channel is
// bounded; the producer blocks on a lagging consumer rather than buffering,
// and exits via ctx when the consumer goes away. May be called once.
func (s *Session) Events(ctx context.Context) <-chan Event {
	out := make(chan Event, s.buffer)

	started := false
	s.once.Do(func() {
		started = true
		go s.run(ctx, out)
	})

	if !started {
		close(out)
	}

	return out
}

func (s *Session) run(ctx context.Context, out chan<- Event) {
	defer close(out)

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	reader, err := OpenChunkReader(s.path, s.chunkSize)
	if err != nil {
		s.logger.Warn("failed to open stream source", "path", s.path, "error", err)
		emit(Event{Type: EventError, Err: err})
		return
	}
	defer reader.Close()

	s.logger.Debug("stream started", "path", s.path, "chunkSize", s.chunkSize, "fileSize", s.totalSize)

	assembler := &LineAssembler{}
	progress := NewProgressReporter(s.totalSize)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("stream abandoned by consumer", "consumed", s.consumed)
			return
		default:
		}

		chunk, readErr := reader.Next()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			s.logger.Warn("read error during streaming", "consumed", s.consumed, "error", readErr)
			emit(Event{Type: EventError, Err: fmt.Errorf("read failed: %w", readErr)})
			return
		}

		s.consumed += int64(len(chunk))

		if lines := assembler.Feed(chunk); len(lines) > 0 {
			s.lineCount += int64(len(lines))
			batch := &LineBatch{Lines: lines, LineCount: s.lineCount}
			if !emit(Event{Type: EventLines, Batch: batch}) {
				return
			}
		}

		snapshot := progress.Report(s.consumed)
		if !emit(Event{Type: EventProgress, Progress: &snapshot}) {
			return
		}
	}

	if tail, ok := assembler.Flush(); ok {
		s.lineCount++
		batch := &LineBatch{Lines: []string{tail}, LineCount: s.lineCount}
		if !emit(Event{Type: EventLines, Batch: batch}) {
			return
		}
	}

	// release the handle before the terminal event
	if err := reader.Close(); err != nil {
		s.logger.Warn("failed to close stream source", "error", err)
	}

	s.logger.Debug("stream completed", "totalLines", s.lineCount, "totalBytes", s.consumed)

	emit(Event{Type: EventComplete, Done: &Completion{
		TotalLines: s.lineCount,
		TotalBytes: s.consumed,
	}})
}
