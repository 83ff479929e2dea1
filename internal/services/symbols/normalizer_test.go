package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "FinSignal/pkg/errors"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("", nil)
	cases := map[string]string{
		"thyao":    "THYAO.IS",
		" Garan ":  "GARAN.IS",
		"sise":     "SISE.IS",
		"SISE.IS":  "SISE.IS",
		"kozal.is": "KOZAL.IS",
	}
	for in, want := range cases {
		got, err := n.Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := NewNormalizer("", nil).Normalize("   ")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidInput))
}

func TestDisplayAndKnown(t *testing.T) {
	n := NewNormalizer(".is", []string{"aaa", "BBB", "aaa"})
	assert.Equal(t, "AAA", n.Display("AAA.IS"))
	assert.Equal(t, []string{"AAA", "BBB"}, n.Known())

	got, err := n.Normalize("ccc")
	require.NoError(t, err)
	assert.Equal(t, "CCC.IS", got)
}

func TestKnownReturnsCopy(t *testing.T) {
	n := NewNormalizer("", nil)
	k := n.Known()
	k[0] = "XXX"
	assert.Equal(t, "THYAO", n.Known()[0])
}
