package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_MustWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(64)

	bb.MustWrite([]byte("header"))
	bb.MustWrite([]byte("|payload"))
	assert.Equal(t, []byte("header|payload"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len(), "Reset should clear length")
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("no-op when capacity suffices", func(t *testing.T) {
		bb := NewByteBuffer(256)
		bb.Grow(100)
		assert.Equal(t, 256, bb.Cap())
	})

	t.Run("grows preserving contents", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.MustWrite([]byte("12345678"))
		bb.Grow(1024)
		require.GreaterOrEqual(t, bb.Cap()-bb.Len(), 1024)
		assert.Equal(t, []byte("12345678"), bb.Bytes())
	})

	t.Run("grows at least the requested bytes", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.Grow(PayloadBufferDefaultSize * 2)
		assert.GreaterOrEqual(t, bb.Cap(), PayloadBufferDefaultSize*2)
	})
}

func TestByteBufferPool(t *testing.T) {
	t.Run("get returns reset buffer", func(t *testing.T) {
		p := NewByteBufferPool(128, 1024)
		bb := p.Get()
		require.NotNil(t, bb)
		bb.MustWrite([]byte("stale"))
		p.Put(bb)

		bb2 := p.Get()
		assert.Equal(t, 0, bb2.Len(), "pooled buffer must come back empty")
	})

	t.Run("discards buffers above threshold", func(t *testing.T) {
		p := NewByteBufferPool(16, 32)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb) // above threshold, should not panic and should be dropped

		bb2 := p.Get()
		assert.LessOrEqual(t, bb2.Cap(), 1024)
	})

	t.Run("put nil is a no-op", func(t *testing.T) {
		p := NewByteBufferPool(16, 32)
		assert.NotPanics(t, func() { p.Put(nil) })
	})
}

func TestPayloadBufferPool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := GetPayloadBuffer()
				bb.MustWrite([]byte{1, 2, 3, 4})
				if bb.Len() != 4 {
					t.Errorf("unexpected buffer length %d", bb.Len())
				}
				PutPayloadBuffer(bb)
			}
		}()
	}
	wg.Wait()
}
