package mp4muxer

import "errors"

var (
	// ErrNotStarted is returned when Append or Finalize is called before Begin.
	ErrNotStarted = errors.New("mp4muxer: muxer not started")

	// ErrCodecMismatch is returned when Begin is called for a codec other than H.264.
	ErrCodecMismatch = errors.New("mp4muxer: MP4 output requires H.264")

	// ErrNoSamples is returned when Finalize is called before any chunk was appended.
	ErrNoSamples = errors.New("mp4muxer: no samples to write")

	// ErrMissingParameterSets is returned when the first chunk lacks SPS or PPS.
	ErrMissingParameterSets = errors.New("mp4muxer: first chunk has no SPS/PPS")
)
