package network

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// ReadChunkSize is the size of a single read from the connection
	ReadChunkSize = 4096
	// MaxFrameSize bounds a frame that has not seen its newline yet
	MaxFrameSize = 1 << 20
)

// ErrFrameTooLarge is returned when a peer sends MaxFrameSize bytes without a newline
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// FrameReader splits a byte stream into newline-terminated frames. A partial
// frame survives read errors, so a read that times out can simply be retried.
type FrameReader struct {
	r       io.Reader
	pending []byte
	chunk   []byte
}

// NewFrameReader creates a frame reader over r
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:     r,
		chunk: make([]byte, ReadChunkSize),
	}
}

// ReadFrame returns the next non-empty frame without its trailing newline.
// Errors from the underlying reader are returned as-is; io.EOF means the peer
// closed the stream (an unterminated trailing frame is discarded).
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	for {
		if frame, ok := fr.next(); ok {
			return frame, nil
		}
		if len(fr.pending) > MaxFrameSize {
			fr.pending = nil
			return nil, ErrFrameTooLarge
		}

		n, err := fr.r.Read(fr.chunk)
		if n > 0 {
			fr.pending = append(fr.pending, fr.chunk[:n]...)
		}
		if err != nil {
			if n > 0 && !errors.Is(err, io.EOF) {
				continue
			}
			if _, ok := fr.peek(); ok {
				continue
			}
			return nil, err
		}
	}
}

// Buffered returns the number of bytes of an incomplete frame held back
func (fr *FrameReader) Buffered() int {
	return len(fr.pending)
}

func (fr *FrameReader) peek() (int, bool) {
	i := bytes.IndexByte(fr.pending, '\n')
	return i, i >= 0
}

func (fr *FrameReader) next() ([]byte, bool) {
	for {
		i, ok := fr.peek()
		if !ok {
			return nil, false
		}

		line := bytes.TrimRight(fr.pending[:i], "\r")
		fr.pending = fr.pending[i+1:]
		if len(fr.pending) == 0 {
			fr.pending = nil
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		frame := make([]byte, len(line))
		copy(frame, line)
		return frame, true
	}
}

// WriteFrame encodes msg and writes it followed by a newline
func WriteFrame(w io.Writer, msg *Message) error {
	data, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.Type, err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
