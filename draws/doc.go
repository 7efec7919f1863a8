// Package draws persists weighted sample sets in a compact binary
// format: a fixed 40-byte header followed by the float payload,
// optionally compressed.
//
// # Format
//
// The header is always little-endian and carries the draw count and
// dimension, the smoothing diagnostics (k-hat, tail length, warning
// flags), a fingerprint of the dataset the draws came from, the payload
// codec, and a CRC-32C of the stored payload. An endian flag bit selects
// the byte order of the payload floats, so files can be produced for
// big-endian consumers without touching the header layout.
//
// The payload packs four float64 blocks back to back: draw coordinates
// row-major, target log densities, proposal log densities, and, when the
// set was smoothed, the normalized weights.
//
// # Compression
//
// Any codec from the compress package can be selected per file. The
// encoder verifies the codec actually shrank the payload and otherwise
// stores it raw, so pathological inputs never grow a file or produce
// empty compressed blocks.
//
// # Example
//
//	data, err := draws.Encode(set,
//		draws.WithCompression(compress.Zstd),
//		draws.WithFingerprint(dataset.Fingerprint()),
//	)
//	if err != nil {
//		return err
//	}
//	restored, hdr, err := draws.Decode(data)
package draws
