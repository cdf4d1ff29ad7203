package network

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader hands out the scripted chunks one Read at a time, returning
// the matching error (if any) with each chunk.
type chunkReader struct {
	chunks []string
	errs   []error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	chunk, err := r.chunks[0], r.errs[0]
	r.chunks, r.errs = r.chunks[1:], r.errs[1:]
	return copy(p, chunk), err
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestFrameReader_SplitAcrossReads(t *testing.T) {
	r := &chunkReader{
		chunks: []string{`{"type":"sh`, `ot","data":{"x":1,`, `"y":2}}` + "\n" + `{"type":"start_game"}` + "\n"},
		errs:   []error{nil, nil, nil},
	}
	fr := NewFrameReader(r)

	want := []string{
		`{"type":"shot","data":{"x":1,"y":2}}`,
		`{"type":"start_game"}`,
	}
	for i, w := range want {
		got, err := fr.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: unexpected error %v", i, err)
		}
		if string(got) != w {
			t.Errorf("frame %d = %s, want %s", i, got, w)
		}
	}
	if _, err := fr.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestFrameReader_PartialSurvivesTimeout(t *testing.T) {
	r := &chunkReader{
		chunks: []string{`{"type":`, "", `"start_game"}` + "\n"},
		errs:   []error{nil, timeoutError{}, nil},
	}
	fr := NewFrameReader(r)

	_, err := fr.ReadFrame()
	var te interface{ Timeout() bool }
	if !errors.As(err, &te) || !te.Timeout() {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if fr.Buffered() != len(`{"type":`) {
		t.Errorf("buffered = %d, want the partial frame kept", fr.Buffered())
	}

	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error after timeout: %v", err)
	}
	if string(got) != `{"type":"start_game"}` {
		t.Errorf("frame = %s", got)
	}
}

func TestFrameReader_SkipsBlankLinesAndCR(t *testing.T) {
	fr := NewFrameReader(strings.NewReader("\n\r\n" + `{"type":"start_game"}` + "\r\n"))
	got, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"type":"start_game"}` {
		t.Errorf("frame = %q", got)
	}
}

func TestFrameReader_DropsUnterminatedTail(t *testing.T) {
	fr := NewFrameReader(strings.NewReader(`{"type":"start_game"}` + "\n" + `{"type":"sh`))
	if _, err := fr.ReadFrame(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fr.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestFrameReader_TooLarge(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(bytes.Repeat([]byte("a"), MaxFrameSize+ReadChunkSize+1)))
	if _, err := fr.ReadFrame(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestWriteFrame_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, CreateErrorMessage(TextNotYourTurn)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	want := `{"type":"error","data":{"error":"No es tu turno"}}` + "\n"
	if buf.String() != want {
		t.Errorf("frame = %q, want %q", buf.String(), want)
	}
}
