package compress

// NoOpCodec passes payloads through untouched. Used when the caller prefers
// raw speed, when payloads are too small to benefit, and as the fallback the
// draws encoder records when a codec fails to shrink a payload.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data as-is. The result shares the input's memory; callers
// must not mutate the input while holding the result.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is, with the same aliasing caveat as Compress.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
