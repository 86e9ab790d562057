package ports

import (
	"image"
)

// Codec identifies a target video codec.
type Codec string

const (
	// CodecH264 is H.264/AVC, muxed into MP4.
	CodecH264 Codec = "h264"
	// CodecVP8 is VP8, muxed into WebM.
	CodecVP8 Codec = "vp8"
)

// EncoderConfig configures a streaming video encoder.
type EncoderConfig struct {
	Codec      Codec
	Width      int
	Height     int
	FrameRate  float64
	BitrateBps int
}

// VideoFrame is a raster frame submitted to an encoder.
type VideoFrame struct {
	Image           *image.RGBA
	TimestampMicros int64
	DurationMicros  int64
}

// EncodedChunk is one unit of encoder output. It is never mutated after creation.
type EncodedChunk struct {
	Data            []byte
	TimestampMicros int64
	DurationMicros  int64
	Key             bool
}

// EncoderEvent is delivered by an encoder on its event channel.
// Exactly one of Chunk or Err is set.
type EncoderEvent struct {
	Chunk *EncodedChunk
	Err   error
}

// VideoEncoder abstracts a streaming video encoder.
//
// Chunks are delivered on the channel returned by Configure in the same order
// the frames were submitted. The channel is closed once Flush has drained the
// encoder or Close has been called.
type VideoEncoder interface {
	// Configure validates the configuration and starts the encoder.
	Configure(cfg EncoderConfig) (<-chan EncoderEvent, error)

	// Encode submits a frame and returns once the encoder has accepted it.
	// The frame image may be overwritten by the caller after Encode returns.
	Encode(frame VideoFrame) error

	// Flush signals end of input. Remaining chunks are delivered before the
	// event channel is closed.
	Flush() error

	// Close releases encoder resources. It is safe to call more than once.
	Close() error
}
