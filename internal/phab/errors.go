package phab

import "fmt"

// ErrorKind classifies a submission failure.
type ErrorKind int

const (
	ErrEncode ErrorKind = iota + 1
	ErrRequest
	ErrStatus
	ErrReadBody
	ErrDecodeResponse
	ErrAPI
)

// Error is a failed submission. Error() describes only this layer.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	// Code is the Conduit error_code for ErrAPI.
	Code string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrEncode:
		return "could not encode the request parameters as JSON"
	case ErrRequest:
		return "could not send a request to conduit endpoint"
	case ErrStatus:
		return fmt.Sprintf("conduit responded with a failure code %d", e.StatusCode)
	case ErrReadBody:
		return "could not read the response body of the conduit API call"
	case ErrDecodeResponse:
		return "could not decode conduit response as JSON"
	case ErrAPI:
		return fmt.Sprintf("conduit API request returned a failure: %s", e.Code)
	default:
		return "conduit request failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
