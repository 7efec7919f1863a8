package draws

import (
	"fmt"
	"hash/crc32"
	"math"

	"github.com/statlite/lapsis/compress"
	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/sample"
)

// Decode reverses Encode, rebuilding the sample set and returning the
// parsed header alongside it for inspection of the stored diagnostics.
//
// Validation order: header size and magic, option flags, compression
// type, payload length, CRC-32C, decompressed length, and finally the
// payload geometry against the draw count and dimension. Each failure
// maps to a sentinel in the errs package.
func Decode(data []byte) (*sample.Set, *Header, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	if got := len(data) - HeaderSize; got != int(hdr.PayloadLen) {
		return nil, nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrPayloadCorrupted, got, hdr.PayloadLen)
	}
	payload := data[HeaderSize:]

	if crc := crc32.Checksum(payload, castagnoli); crc != hdr.PayloadCRC {
		return nil, nil, fmt.Errorf("%w: payload CRC 0x%08X, header says 0x%08X",
			errs.ErrChecksumMismatch, crc, hdr.PayloadCRC)
	}

	codec, err := compress.GetCodec(hdr.Compression)
	if err != nil {
		return nil, nil, err
	}
	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrPayloadCorrupted, err)
	}
	if len(raw) != int(hdr.RawLen) {
		return nil, nil, fmt.Errorf("%w: decompressed %d bytes, header says %d",
			errs.ErrPayloadCorrupted, len(raw), hdr.RawLen)
	}

	n := int(hdr.DrawCount)
	dim := int(hdr.Dim)
	if n == 0 || dim == 0 {
		return nil, nil, fmt.Errorf("%w: header describes %d draws of dimension %d",
			errs.ErrEmptySampleSet, n, dim)
	}
	cols := dim + 2
	if hdr.HasWeights() {
		cols++
	}
	if want := uint64(n) * uint64(cols) * 8; uint64(len(raw)) != want {
		return nil, nil, fmt.Errorf("%w: %d raw bytes for %d draws of dimension %d",
			errs.ErrPayloadCorrupted, len(raw), n, dim)
	}

	e := hdr.engine()
	off := 0
	readFloats := func(count int) []float64 {
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(e.Uint64(raw[off : off+8]))
			off += 8
		}
		return out
	}

	flat := readFloats(n * dim)
	draws := make([][]float64, n)
	for i := range draws {
		draws[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}
	targetLP := readFloats(n)
	proposalLP := readFloats(n)

	var weights []float64
	if hdr.HasWeights() {
		weights = readFloats(n)
	}

	set, err := sample.Restore(draws, targetLP, proposalLP, weights, hdr.KHat, int(hdr.TailLen), hdr.Warnings)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrPayloadCorrupted, err)
	}

	return set, hdr, nil
}
