package ports

import "context"

// Capability reports whether the host can decode sources and encode output.
type Capability struct {
	Supported bool
	Encoders  []Codec // codecs the host can encode
	Reason    string  // why Supported is false
}

// Has reports whether the codec can be encoded on this host.
func (c Capability) Has(codec Codec) bool {
	for _, e := range c.Encoders {
		if e == codec {
			return true
		}
	}
	return false
}

// CapabilityProber checks the host for encode/decode primitives.
type CapabilityProber interface {
	Probe(ctx context.Context) Capability
}
