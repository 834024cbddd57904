package core

// streaming.go provides the reader wrappers used when an uploaded file is
// pulled into memory for classification:
//
//   - contextReader: stops reading once the context is cancelled
//   - limitedReader: fails with ErrFileTooLarge instead of truncating
//   - CountingReader: tracks bytes read for import logging
//
// Use ReadAllLimited to apply the first two in the correct order.

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// DefaultMaxFileSize bounds how much of an upload is read into memory.
const DefaultMaxFileSize int64 = 10 << 20

// contextReader returns the context error as soon as ctx is done.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}

// limitedReader is io.LimitReader with an error instead of a silent EOF.
// It reads one byte past the limit so that a file of exactly max bytes
// is still accepted.
type limitedReader struct {
	reader    io.Reader
	remaining int64
	max       int64
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if r.remaining < 0 {
		return 0, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, r.max)
	}
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err := r.reader.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		return n, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, r.max)
	}
	return n, err
}

// ReadAllLimited reads r to the end, honouring ctx and a byte limit.
// A non-positive max disables the limit.
func ReadAllLimited(ctx context.Context, r io.Reader, max int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}

	var src io.Reader = &contextReader{ctx: ctx, reader: r}
	if max > 0 {
		src = &limitedReader{reader: src, remaining: max, max: max}
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CountingReader wraps an io.Reader to track bytes read.
// The API client wraps forwarded uploads with it so the import log line
// carries the size actually sent.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
