package draws

import (
	"fmt"
	"hash/crc32"
	"math"

	"github.com/statlite/lapsis/compress"
	"github.com/statlite/lapsis/endian"
	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/psis"
)

// HeaderSize is the fixed length of the draws file header in bytes.
const HeaderSize = 40

const (
	// headerMagic occupies the high twelve bits of the options word.
	// The low nibble carries the flag bits.
	headerMagic      = 0xD7A0
	optionMagicMask  = 0xFFF0
	optionEndianBit  = 0x0001
	optionWeightsBit = 0x0002
	optionKnownMask  = optionMagicMask | optionEndianBit | optionWeightsBit

	warningKnownMask = psis.TailTooSmall | psis.UnreliableEstimate | psis.UnusableEstimate
)

// castagnoli is the CRC-32C table shared by encoder and decoder.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header is the fixed-size prefix of an encoded sample set. Header
// fields are always little-endian; the endian flag bit governs only the
// float payload that follows.
//
// Layout:
//
//	offset  size  field
//	0       2     Options (magic + flag bits)
//	2       1     Compression
//	3       1     Warnings
//	4       4     DrawCount
//	8       2     Dim
//	10      2     TailLen
//	12      8     Fingerprint
//	20      8     KHat (IEEE 754 bits)
//	28      4     RawLen
//	32      4     PayloadLen
//	36      4     PayloadCRC (CRC-32C of the stored payload)
type Header struct {
	Options     uint16
	Compression compress.Type
	Warnings    psis.Warning
	DrawCount   uint32
	Dim         uint16
	TailLen     uint16
	Fingerprint uint64
	KHat        float64
	RawLen      uint32
	PayloadLen  uint32
	PayloadCRC  uint32
}

// BigEndian reports whether the payload floats are big-endian.
func (h *Header) BigEndian() bool {
	return h.Options&optionEndianBit != 0
}

// HasWeights reports whether the payload carries a smoothed weight
// column.
func (h *Header) HasWeights() bool {
	return h.Options&optionWeightsBit != 0
}

// Stats summarizes the payload compression recorded in the header.
func (h *Header) Stats() compress.Stats {
	return compress.Stats{
		Algorithm:      h.Compression,
		OriginalSize:   int64(h.RawLen),
		CompressedSize: int64(h.PayloadLen),
	}
}

// engine returns the byte-order engine for the payload floats.
func (h *Header) engine() endian.Engine {
	if h.BigEndian() {
		return endian.Big()
	}

	return endian.Little()
}

// appendTo marshals the header onto dst and returns the extended slice.
func (h *Header) appendTo(dst []byte) []byte {
	e := endian.Little()
	dst = e.AppendUint16(dst, h.Options)
	dst = append(dst, byte(h.Compression), byte(h.Warnings))
	dst = e.AppendUint32(dst, h.DrawCount)
	dst = e.AppendUint16(dst, h.Dim)
	dst = e.AppendUint16(dst, h.TailLen)
	dst = e.AppendUint64(dst, h.Fingerprint)
	dst = e.AppendUint64(dst, math.Float64bits(h.KHat))
	dst = e.AppendUint32(dst, h.RawLen)
	dst = e.AppendUint32(dst, h.PayloadLen)
	dst = e.AppendUint32(dst, h.PayloadCRC)

	return dst
}

// parseHeader validates and decodes the fixed-size header prefix.
func parseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	e := endian.Little()
	opts := e.Uint16(data[0:2])
	if opts&optionMagicMask != headerMagic {
		return nil, fmt.Errorf("%w: options word 0x%04X", errs.ErrInvalidMagic, opts)
	}
	if unknown := opts &^ uint16(optionKnownMask); unknown != 0 {
		return nil, fmt.Errorf("%w: unknown option bits 0x%04X", errs.ErrInvalidHeaderFlags, unknown)
	}

	compression := compress.Type(data[2])
	if !compression.IsValid() {
		return nil, fmt.Errorf("%w: compression byte 0x%02X", errs.ErrUnsupportedCompression, data[2])
	}

	warnings := psis.Warning(data[3])
	if unknown := warnings &^ warningKnownMask; unknown != 0 {
		return nil, fmt.Errorf("%w: unknown warning bits 0x%02X", errs.ErrInvalidHeaderFlags, uint8(unknown))
	}

	return &Header{
		Options:     opts,
		Compression: compression,
		Warnings:    warnings,
		DrawCount:   e.Uint32(data[4:8]),
		Dim:         e.Uint16(data[8:10]),
		TailLen:     e.Uint16(data[10:12]),
		Fingerprint: e.Uint64(data[12:20]),
		KHat:        math.Float64frombits(e.Uint64(data[20:28])),
		RawLen:      e.Uint32(data[28:32]),
		PayloadLen:  e.Uint32(data[32:36]),
		PayloadCRC:  e.Uint32(data[36:40]),
	}, nil
}
