// Package jsonl turns the newline-delimited JSON output of a child process
// into a pull-driven sequence of typed values.
//
// # Architecture
//
// The package is a set of small stages over iter.Seq2[T, error]:
//
//  1. Lines - splits a byte stream on '\n'
//  2. Values - decodes each line into T
//  3. FilterReason - keeps values whose "reason" field matches a tag
//  4. FilterReported - drops recoverable decode errors after reporting them
//
// Start and Stream tie a child process to the sequence. The child's stdout is
// read only when the consumer pulls the next item, so a slow consumer
// backpressures into the OS pipe buffer rather than into memory.
//
// # Process lifetime
//
// The process belongs to the sequence that reads it. When the consumer
// stops ranging early (break, return or panic), the whole process group is
// killed and reaped before the loop exits. When the sequence is drained, the
// process is waited on and a non-zero exit is yielded as the last item:
//
//	values := jsonl.FilterReported(
//	    jsonl.FilterReason[Diagnostic](
//	        jsonl.Stream[json.RawMessage](ctx, cmd),
//	        "compiler-message",
//	    ),
//	    warn,
//	)
//	for d, err := range values {
//	    if err != nil {
//	        return err // KindExitStatus, KindRead, KindSpawn, KindWait
//	    }
//	    // use d
//	}
//
// # Errors
//
// Every error produced by the package is a *Error. KindDecode and
// KindUpstreamDecode are recoverable: the sequence keeps going after
// yielding them. All other kinds end the sequence.
package jsonl
