package jsonl

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Decode parses one line into T. On failure the returned *Error keeps a
// copy of the line so it can be shown to the operator.
func Decode[T any](line []byte) (T, error) {
	var v T
	if err := json.Unmarshal(line, &v); err != nil {
		var zero T
		return zero, &Error{Kind: KindDecode, Line: bytes.Clone(line), Err: err}
	}
	return v, nil
}

// Values decodes every line of lines into T.
//
// Decode failures are yielded as recoverable errors and the sequence goes
// on. Any other error from lines is yielded and ends the sequence.
func Values[T any](lines iter.Seq2[[]byte, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for line, err := range lines {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(Decode[T](line)) {
				return
			}
		}
	}
}
