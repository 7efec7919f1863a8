package draws

import (
	"fmt"
	"hash/crc32"
	"math"

	"github.com/statlite/lapsis/compress"
	"github.com/statlite/lapsis/endian"
	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/internal/options"
	"github.com/statlite/lapsis/internal/pool"
	"github.com/statlite/lapsis/sample"
)

type encodeConfig struct {
	compression compress.Type
	engine      endian.Engine
	fingerprint uint64
	dropWeights bool
}

// Option configures Encode.
type Option = options.Option[*encodeConfig]

// WithCompression selects the payload codec. The default stores the
// payload uncompressed.
func WithCompression(t compress.Type) Option {
	return options.New(func(c *encodeConfig) error {
		if !t.IsValid() {
			return fmt.Errorf("%w: compression type 0x%02X", errs.ErrUnsupportedCompression, uint8(t))
		}
		c.compression = t

		return nil
	})
}

// WithBigEndian stores the payload floats big-endian. Header fields are
// unaffected.
func WithBigEndian() Option {
	return options.NoError(func(c *encodeConfig) {
		c.engine = endian.Big()
	})
}

// WithFingerprint records the dataset fingerprint the draws were
// produced from, tying a draws file back to its input data.
func WithFingerprint(fp uint64) Option {
	return options.NoError(func(c *encodeConfig) {
		c.fingerprint = fp
	})
}

// WithoutWeights omits the smoothed weight column even when the set has
// been smoothed.
func WithoutWeights() Option {
	return options.NoError(func(c *encodeConfig) {
		c.dropWeights = true
	})
}

// Encode serializes a sample set into the draws binary format: a fixed
// 40-byte header followed by the float payload, optionally compressed.
//
// The payload stores, in order, the draw coordinates row-major, the
// target log densities, the proposal log densities, and the smoothed
// weights when present. When the selected codec does not shrink the
// payload the encoder silently falls back to storing it raw, recording
// compress.None in the header.
func Encode(set *sample.Set, opts ...Option) ([]byte, error) {
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", errs.ErrEmptySampleSet)
	}

	cfg := &encodeConfig{
		compression: compress.None,
		engine:      endian.Little(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	n, dim := set.Len(), set.Dim()
	withWeights := set.Smoothed() && !cfg.dropWeights

	cols := dim + 2
	if withWeights {
		cols++
	}
	rawLen := uint64(n) * uint64(cols) * 8
	switch {
	case uint64(n) > math.MaxUint32:
		return nil, fmt.Errorf("%w: %d draws exceed the format limit", errs.ErrInvalidConfig, n)
	case uint64(dim) > math.MaxUint16:
		return nil, fmt.Errorf("%w: dimension %d exceeds the format limit", errs.ErrInvalidConfig, dim)
	case uint64(set.TailLen()) > math.MaxUint16:
		return nil, fmt.Errorf("%w: tail length %d exceeds the format limit", errs.ErrInvalidConfig, set.TailLen())
	case rawLen > math.MaxUint32:
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds the format limit", errs.ErrInvalidConfig, rawLen)
	}

	rawBuf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(rawBuf)
	rawBuf.Grow(int(rawLen))

	e := cfg.engine
	buf := rawBuf.B
	for _, draw := range set.Draws {
		for _, v := range draw {
			buf = e.AppendUint64(buf, math.Float64bits(v))
		}
	}
	for _, v := range set.TargetLogProb {
		buf = e.AppendUint64(buf, math.Float64bits(v))
	}
	for _, v := range set.ProposalLogProb {
		buf = e.AppendUint64(buf, math.Float64bits(v))
	}
	if withWeights {
		for _, v := range set.Weights() {
			buf = e.AppendUint64(buf, math.Float64bits(v))
		}
	}
	rawBuf.B = buf

	payload := buf
	compression := cfg.compression
	if cfg.compression != compress.None {
		codec, err := compress.GetCodec(cfg.compression)
		if err != nil {
			return nil, err
		}
		compressed, err := codec.Compress(buf)
		if err != nil {
			return nil, fmt.Errorf("compress draws payload: %w", err)
		}
		if len(compressed) == 0 || len(compressed) >= len(buf) {
			compression = compress.None
		} else {
			payload = compressed
		}
	}

	hdr := &Header{
		Options:     headerMagic,
		Compression: compression,
		Warnings:    set.Warnings(),
		DrawCount:   uint32(n),
		Dim:         uint16(dim),
		TailLen:     uint16(set.TailLen()),
		Fingerprint: cfg.fingerprint,
		KHat:        set.KHat(),
		RawLen:      uint32(len(buf)),
		PayloadLen:  uint32(len(payload)),
		PayloadCRC:  crc32.Checksum(payload, castagnoli),
	}
	if !endian.IsLittle(e) {
		hdr.Options |= optionEndianBit
	}
	if withWeights {
		hdr.Options |= optionWeightsBit
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = hdr.appendTo(out)
	out = append(out, payload...)

	return out, nil
}
