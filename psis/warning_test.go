package psis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarning_Has(t *testing.T) {
	w := TailTooSmall | UnreliableEstimate

	assert.True(t, w.Has(TailTooSmall))
	assert.True(t, w.Has(UnreliableEstimate))
	assert.False(t, w.Has(UnusableEstimate))
	assert.True(t, w.Has(TailTooSmall|UnreliableEstimate))
	assert.False(t, w.Has(TailTooSmall|UnusableEstimate))
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "none", Warning(0).String())
	assert.Equal(t, "tail-too-small", TailTooSmall.String())
	assert.Equal(t, "unreliable-estimate|unusable-estimate",
		(UnreliableEstimate | UnusableEstimate).String())
}
