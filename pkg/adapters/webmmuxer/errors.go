package webmmuxer

import "errors"

var (
	// ErrNotStarted is returned when Append or Finalize is called before Begin.
	ErrNotStarted = errors.New("webmmuxer: muxer not started")

	// ErrCodecMismatch is returned when Begin is called for a codec other than VP8.
	ErrCodecMismatch = errors.New("webmmuxer: WebM output requires VP8")

	// ErrNoBlocks is returned when Finalize is called before any chunk was appended.
	ErrNoBlocks = errors.New("webmmuxer: no blocks to write")
)
