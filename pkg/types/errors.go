package types

import "fmt"

// InvalidAssetTypeError reports a file whose declared media type is not an image.
type InvalidAssetTypeError struct {
	MediaType string
}

func (e *InvalidAssetTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q: expected image/*", e.MediaType)
}

// PreconditionError reports an operation rejected locally before any request
// was sent: no image loaded, a blank instruction, or a dispatch already in
// flight. It is advisory; session state is left unchanged.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// TransportError reports a non-2xx response or an unreachable backend.
// StatusCode is zero when the request never produced a response.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError reports a backend that ran but declined or failed the
// task. Message is the server-supplied error text, passed through verbatim.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// DecodeError reports a processed image that could not be decoded for
// rendering.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode processed image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
