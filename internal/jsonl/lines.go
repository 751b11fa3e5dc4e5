package jsonl

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
)

const (
	// readerBufferSize is the bufio.Reader size used when the source isn't buffered.
	readerBufferSize = 64 * 1024
	// lineBufferInitial is the initial capacity of the reused line buffer.
	lineBufferInitial = 1024
)

// Lines returns a single-pass sequence over the '\n'-terminated lines of r.
//
// The terminator (and a preceding '\r') is stripped. Whitespace-only lines
// are skipped. A final line without a terminator is still yielded. The
// yielded slice is only valid until the next iteration; callers that keep it
// must copy it.
//
// A read failure is yielded once as a KindRead *Error and ends the sequence.
func Lines(r io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		br, ok := r.(*bufio.Reader)
		if !ok {
			br = bufio.NewReaderSize(r, readerBufferSize)
		}
		line := make([]byte, 0, lineBufferInitial)

		for {
			line = line[:0]
			var err error
			for {
				var chunk []byte
				chunk, err = br.ReadSlice('\n')
				line = append(line, chunk...)
				if !errors.Is(err, bufio.ErrBufferFull) {
					break
				}
			}

			atEOF := errors.Is(err, io.EOF)
			if err != nil && !atEOF {
				yield(nil, &Error{Kind: KindRead, Err: err})
				return
			}
			if len(line) == 0 {
				return
			}

			content := bytes.TrimSuffix(line, []byte{'\n'})
			content = bytes.TrimSuffix(content, []byte{'\r'})
			if len(bytes.TrimSpace(content)) > 0 {
				if !yield(content, nil) {
					return
				}
			}
			if atEOF {
				return
			}
		}
	}
}
