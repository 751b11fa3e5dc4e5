package jsonl

import (
	"errors"
	"iter"
)

// WarnFunc receives the recoverable errors dropped by FilterReported.
type WarnFunc func(err *Error)

// FilterReported passes values through, reports recoverable errors to warn
// and drops them, and yields the first fatal error before ending.
// A nil warn drops recoverable errors without reporting them.
func FilterReported[T any](seq iter.Seq2[T, error], warn WarnFunc) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err == nil {
				if !yield(v, nil) {
					return
				}
				continue
			}
			var e *Error
			if errors.As(err, &e) && e.Recoverable() {
				if warn != nil {
					warn(e)
				}
				continue
			}
			yield(v, err)
			return
		}
	}
}
