package stream

import (
	"fmt"
	"io"
	"os"
)

// ChunkReader reads a file sequentially in fixed-size chunks. Reading stops at
// the size captured at open time, so a file growing mid-read cannot push the
// total past the size the caller was told.
type ChunkReader struct {
	file      *os.File
	buf       []byte
	totalSize int64
	remaining int64
}

// OpenChunkReader stats and opens the file at path. The stat happens first so
// a missing or unreadable file fails before any read begins.
func OpenChunkReader(path string, chunkSize int) (*ChunkReader, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found or unreadable: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &ChunkReader{
		file:      f,
		buf:       make([]byte, chunkSize),
		totalSize: info.Size(),
		remaining: info.Size(),
	}, nil
}

// TotalSize returns the file size captured at open time.
func (r *ChunkReader) TotalSize() int64 {
	return r.totalSize
}

// Next returns the next raw chunk. The returned slice is only valid until the
// following call. At the open-time end of file it returns io.EOF.
func (r *ChunkReader) Next() ([]byte, error) {
	if r.remaining <= 0 {
		return nil, io.EOF
	}

	buf := r.buf
	if r.remaining < int64(len(buf)) {
		buf = buf[:r.remaining]
	}

	n, err := r.file.Read(buf)
	if n > 0 {
		r.remaining -= int64(n)
		return buf[:n], nil
	}
	return nil, err
}

func (r *ChunkReader) Close() error {
	return r.file.Close()
}
