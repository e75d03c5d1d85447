package streams

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Out() != os.Stdout || s.ErrOut() != os.Stderr {
		t.Fatalf("Default() must use os.Stdout/os.Stderr")
	}
}

func TestWriters(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	s := Writers(&outBuf, &errBuf)

	n, err := s.Out().Write([]byte("hello out\n"))
	if err != nil || n != len("hello out\n") {
		t.Fatalf("Out() write failed: n=%d err=%v", n, err)
	}
	n, err = s.ErrOut().Write([]byte("hello err\n"))
	if err != nil || n != len("hello err\n") {
		t.Fatalf("ErrOut() write failed: n=%d err=%v", n, err)
	}

	if got := outBuf.String(); got != "hello out\n" {
		t.Fatalf("Out buffer = %q, want %q", got, "hello out\n")
	}
	if got := errBuf.String(); got != "hello err\n" {
		t.Fatalf("Err buffer = %q, want %q", got, "hello err\n")
	}
}

func TestDiscard(t *testing.T) {
	s := Discard()
	for _, w := range []io.Writer{s.Out(), s.ErrOut()} {
		n, err := w.Write([]byte("dropped\n"))
		if err != nil || n != len("dropped\n") {
			t.Fatalf("discard write failed: n=%d err=%v", n, err)
		}
	}
}

func TestPrintf(t *testing.T) {
	var buf bytes.Buffer
	Printf(&buf, "storage: loaded from %s", "/tmp/a.json")
	if got, want := buf.String(), "storage: loaded from /tmp/a.json\n"; got != want {
		t.Fatalf("Printf wrote %q, want %q", got, want)
	}

	// nil writer must not panic
	Printf(nil, "ignored %d", 1)
}

func TestBuffersStreams(t *testing.T) {
	bs := Buffers()

	Printf(bs.Out(), "info %d", 1)
	Printf(bs.ErrOut(), "err %d", 1)

	out, errS := bs.Strings()
	if out != "info 1\n" || errS != "err 1\n" {
		t.Fatalf("Strings() = %q / %q, want %q / %q", out, errS, "info 1\n", "err 1\n")
	}

	bs.Reset()
	out, errS = bs.Strings()
	if out != "" || errS != "" {
		t.Fatalf("after Reset, got %q / %q, want empty / empty", out, errS)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	th := slog.NewTextHandler(&buf, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		// Drop time to make output deterministic
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}})
	s := Slog(slog.New(th), slog.LevelInfo, slog.LevelWarn)

	Printf(s.Out(), "hello info")
	Printf(s.ErrOut(), "boom warn")

	got := buf.String()
	if !strings.Contains(got, "level=INFO") || !strings.Contains(got, "msg=\"hello info\"") {
		t.Fatalf("missing info log in slog output: %q", got)
	}
	if !strings.Contains(got, "level=WARN") || !strings.Contains(got, "msg=\"boom warn\"") {
		t.Fatalf("missing warn log in slog output: %q", got)
	}
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	s := Zerolog(zerolog.New(&buf), zerolog.InfoLevel, zerolog.WarnLevel)

	Printf(s.Out(), "hello info")
	Printf(s.ErrOut(), "boom warn")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 zerolog events, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], `"message":"hello info"`) {
		t.Fatalf("unexpected info event: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"warn"`) || !strings.Contains(lines[1], `"message":"boom warn"`) {
		t.Fatalf("unexpected warn event: %s", lines[1])
	}
}
