package draws

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlite/lapsis/compress"
	"github.com/statlite/lapsis/errs"
	"github.com/statlite/lapsis/psis"
)

func TestHeader_RoundTrip(t *testing.T) {
	hdr := &Header{
		Options:     headerMagic | optionEndianBit | optionWeightsBit,
		Compression: compress.Zstd,
		Warnings:    psis.UnreliableEstimate,
		DrawCount:   12345,
		Dim:         2,
		TailLen:     95,
		Fingerprint: 0xDEADBEEFCAFEF00D,
		KHat:        0.6289,
		RawLen:      494000,
		PayloadLen:  120733,
		PayloadCRC:  0x8F3A2C11,
	}

	buf := hdr.appendTo(nil)
	require.Len(t, buf, HeaderSize)

	parsed, err := parseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, hdr, parsed)
	assert.True(t, parsed.BigEndian())
	assert.True(t, parsed.HasWeights())

	stats := parsed.Stats()
	assert.Equal(t, compress.Zstd, stats.Algorithm)
	assert.Equal(t, int64(494000), stats.OriginalSize)
	assert.Equal(t, int64(120733), stats.CompressedSize)
}

func TestHeader_NaNKHat(t *testing.T) {
	hdr := &Header{
		Options:     headerMagic,
		Compression: compress.None,
		DrawCount:   10,
		Dim:         2,
		KHat:        math.NaN(),
	}

	parsed, err := parseHeader(hdr.appendTo(nil))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(parsed.KHat))
	assert.False(t, parsed.BigEndian())
	assert.False(t, parsed.HasWeights())
}

func TestParseHeader_Errors(t *testing.T) {
	valid := (&Header{Options: headerMagic, Compression: compress.None}).appendTo(nil)

	t.Run("ShortBuffer", func(t *testing.T) {
		_, err := parseHeader(valid[:HeaderSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

		_, err = parseHeader(nil)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("BadMagic", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		buf[1] ^= 0x01

		_, err := parseHeader(buf)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("UnknownOptionBits", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		buf[0] |= 0x04

		_, err := parseHeader(buf)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("UnknownWarningBits", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		buf[3] |= 0x80

		_, err := parseHeader(buf)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("BadCompression", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		buf[2] = 0x7F

		_, err := parseHeader(buf)
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})
}
