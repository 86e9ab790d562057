package ffmpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Configure.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrEncodingFailed is returned when a frame cannot be handed to ffmpeg.
	ErrEncodingFailed = errors.New("ffmpegencoder: encoding failed")

	// ErrInvalidConfig is returned when encoder parameters are rejected.
	ErrInvalidConfig = errors.New("ffmpegencoder: invalid configuration")

	// ErrFFmpegNotFound is returned when ffmpeg cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpegencoder: ffmpeg not found in PATH")

	// ErrFFprobeNotFound is returned when ffprobe cannot be located.
	ErrFFprobeNotFound = errors.New("ffmpegencoder: ffprobe not found in PATH")

	// ErrCodecUnavailable is returned when ffmpeg was built without the codec's encoder.
	ErrCodecUnavailable = errors.New("ffmpegencoder: codec not available")

	// ErrUnexpectedChunk is returned when ffmpeg emits more output units than frames submitted.
	ErrUnexpectedChunk = errors.New("ffmpegencoder: chunk without a submitted frame")
)
