package jsonl

import (
	"bytes"
	"encoding/json"
	"iter"
)

// ReasonField is the discriminant cargo puts on every message.
const ReasonField = "reason"

// Reason returns the string value of the discriminant field of a JSON
// object. ok is false when value is not an object or the field is missing
// or not a string.
func Reason(value json.RawMessage) (reason string, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil {
		return "", false
	}
	raw, found := fields[ReasonField]
	if !found {
		return "", false
	}
	if err := json.Unmarshal(raw, &reason); err != nil {
		return "", false
	}
	return reason, true
}

// FilterReason keeps the values whose discriminant equals reason and
// decodes them into T.
//
// Values with a different or missing discriminant are dropped silently:
// they are progress or artifact records, not errors. A value that matches
// but does not decode into T is yielded as a recoverable KindUpstreamDecode
// error so that schema drift is visible. Errors from values pass through
// unchanged, and non-recoverable ones end the sequence.
func FilterReason[T any](values iter.Seq2[json.RawMessage, error], reason string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for value, err := range values {
			if err != nil {
				if !yield(zero, err) || !IsRecoverable(err) {
					return
				}
				continue
			}
			if got, ok := Reason(value); !ok || got != reason {
				continue
			}
			var v T
			if err := json.Unmarshal(value, &v); err != nil {
				if !yield(zero, &Error{Kind: KindUpstreamDecode, Line: bytes.Clone(value), Err: err}) {
					return
				}
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
