package jsonl

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func collectLines(t *testing.T, r io.Reader) ([]string, error) {
	t.Helper()
	var got []string
	for line, err := range Lines(r) {
		if err != nil {
			return got, err
		}
		got = append(got, string(line))
	}
	return got, nil
}

func TestLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty input", input: "", want: nil},
		{name: "single line", input: "{\"a\":1}\n", want: []string{`{"a":1}`}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "blank lines skipped", input: "a\n\n  \nb\n\n", want: []string{"a", "b"}},
		{name: "only whitespace", input: "\n\n\t\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectLines(t, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Lines() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Lines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLines_LongLine(t *testing.T) {
	long := strings.Repeat("x", readerBufferSize*3+17)
	got, err := collectLines(t, strings.NewReader(long+"\nshort\n"))
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0] != long {
		t.Errorf("long line length = %d, want %d", len(got[0]), len(long))
	}
	if got[1] != "short" {
		t.Errorf("second line = %q, want %q", got[1], "short")
	}
}

func TestLines_ReadFailure(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("first\n"), iotest.ErrReader(boom))

	var lines []string
	var errs []error
	for line, err := range Lines(r) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lines = append(lines, string(line))
	}

	if len(lines) != 1 || lines[0] != "first" {
		t.Errorf("lines = %q, want [first]", lines)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly 1", len(errs))
	}
	if !IsKind(errs[0], KindRead) {
		t.Errorf("error kind: got %v, want KindRead", errs[0])
	}
	if !errors.Is(errs[0], boom) {
		t.Errorf("error should wrap the read failure, got %v", errs[0])
	}
}

func TestLines_StopEarly(t *testing.T) {
	count := 0
	for range Lines(strings.NewReader("a\nb\nc\n")) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
