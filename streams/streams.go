// Package streams provides message sinks for the settings and storage packages.
// The sinks receive user-facing notes ("loaded from", "created") on Out and
// non-fatal warnings on ErrOut. Adapters route them to plain writers, discard
// them, capture them in buffers, or forward them to slog and zerolog loggers.
package streams

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
)

// Streams is the contract used by storage.WithStreams and settings.WithStreams.
// Either writer may be nil, in which case the corresponding messages are dropped.
type Streams interface {
	Out() io.Writer
	ErrOut() io.Writer
}

// Basic forwards writes to the supplied io.Writer targets.
type Basic struct {
	out    io.Writer
	errOut io.Writer
}

func (s Basic) Out() io.Writer    { return s.out }
func (s Basic) ErrOut() io.Writer { return s.errOut }

// Default returns a Basic backed by os.Stdout and os.Stderr.
func Default() Basic {
	return Basic{out: os.Stdout, errOut: os.Stderr}
}

// Writers returns a Basic that writes Out to out and ErrOut to err.
func Writers(out, err io.Writer) Basic {
	return Basic{out: out, errOut: err}
}

// Discard drops all output.
func Discard() Basic {
	return Writers(io.Discard, io.Discard)
}

// Printf writes a formatted line to w. A nil writer is a no-op, so callers
// can pass s.Out() without checking.
func Printf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// ---------- Buffers ----------

// BuffersStreams captures output into bytes.Buffers. It is not safe for
// concurrent writers.
type BuffersStreams struct {
	OutBuf *bytes.Buffer
	ErrBuf *bytes.Buffer
}

// Buffers creates a BuffersStreams with fresh buffers.
func Buffers() *BuffersStreams {
	return &BuffersStreams{OutBuf: &bytes.Buffer{}, ErrBuf: &bytes.Buffer{}}
}

func (b *BuffersStreams) Out() io.Writer    { return b.OutBuf }
func (b *BuffersStreams) ErrOut() io.Writer { return b.ErrBuf }

// Strings returns the current contents of the Out and ErrOut buffers.
func (b *BuffersStreams) Strings() (out, err string) {
	return b.OutBuf.String(), b.ErrBuf.String()
}

// Reset clears both buffers.
func (b *BuffersStreams) Reset() {
	b.OutBuf.Reset()
	b.ErrBuf.Reset()
}

// ---------- logger adapters ----------

// slogWriter adapts slog.Logger to io.Writer; each Write is one record.
type slogWriter struct {
	l     *slog.Logger
	level slog.Level
}

func (w slogWriter) Write(p []byte) (int, error) {
	w.l.Log(context.Background(), w.level, string(trimNewline(p)))
	return len(p), nil
}

// Slog routes Out to l at level info and ErrOut at level err.
func Slog(l *slog.Logger, info, err slog.Level) Basic {
	return Basic{
		out:    slogWriter{l: l, level: info},
		errOut: slogWriter{l: l, level: err},
	}
}

// zerologWriter adapts zerolog.Logger to io.Writer; each Write is one event.
type zerologWriter struct {
	l     zerolog.Logger
	level zerolog.Level
}

func (w zerologWriter) Write(p []byte) (int, error) {
	w.l.WithLevel(w.level).Msg(string(trimNewline(p)))
	return len(p), nil
}

// Zerolog routes Out to l at level info and ErrOut at level err.
func Zerolog(l zerolog.Logger, info, err zerolog.Level) Basic {
	return Basic{
		out:    zerologWriter{l: l, level: info},
		errOut: zerologWriter{l: l, level: err},
	}
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}
