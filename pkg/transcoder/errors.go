package transcoder

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal job failure.
type Kind string

const (
	KindCapabilityUnavailable Kind = "CapabilityUnavailable"
	KindUnsupportedCodec      Kind = "UnsupportedCodec"
	KindEncoderConfiguration  Kind = "EncoderConfigurationError"
	KindFrameEncode           Kind = "FrameEncodeError"
	KindContainerMux          Kind = "ContainerMuxError"
	KindInputDecode           Kind = "InputDecodeError"
)

var (
	// ErrCapabilityUnavailable is returned by Configure when the host lacks
	// encode/decode primitives. No job is created.
	ErrCapabilityUnavailable = errors.New("transcoder: capability unavailable")

	// ErrCancelled is returned by Run when the job context is cancelled.
	ErrCancelled = errors.New("transcoder: job cancelled")

	// ErrNotIdle is returned when Run is called on a job that already ran.
	ErrNotIdle = errors.New("transcoder: job is not idle")
)

// Error is a terminal job failure with its taxonomy kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrCapabilityUnavailable for capability failures.
func (e *Error) Is(target error) bool {
	return target == ErrCapabilityUnavailable && e.Kind == KindCapabilityUnavailable
}

// KindOf returns the failure kind of err, or "" when err is not a job failure.
func KindOf(err error) Kind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return ""
}
