package receipts

import (
	"errors"
	"fmt"
)

// Sentinel errors for requests that cannot be rendered.
var (
	ErrMalformedPayload = errors.New("receipts: malformed payload")
	ErrNoLayout         = errors.New("receipts: request has no layout")
	ErrNoInstance       = errors.New("receipts: request has no instance")
)

// RenderError is a failure while drawing or writing a receipt. No output
// has been written when it is returned.
type RenderError struct {
	Op  string // stage that failed, e.g. "render"
	Err error  // underlying error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("receipts.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("receipts.%s: unknown error", e.Op)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(op string, err error) *RenderError {
	return &RenderError{Op: op, Err: err}
}
