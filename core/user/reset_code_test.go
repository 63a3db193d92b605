package user

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := newResetCode()
		require.NoError(t, err)
		assert.True(t, isResetCodeFormat(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)

	t.Run("rejects biased bytes", func(t *testing.T) {
		defer func(r io.Reader) { randReader = r }(randReader)

		// 252..255 are out of range; 0 -> 'A', 35 -> '9', 36 -> 'A'
		randReader = bytes.NewReader(append(
			[]byte{255, 254, 253, 252, 0, 35, 36, 1, 2, 3, 4, 5},
			bytes.Repeat([]byte{0}, 12)...,
		))
		code, err := newResetCode()
		require.NoError(t, err)
		assert.Equal(t, "A9ABCD", code)
	})
}

func TestIsResetCodeFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{code: "ABC123", want: true},
		{code: "ZZZZZZ", want: true},
		{code: "abc123", want: false},
		{code: "ABC12", want: false},
		{code: "ABC1234", want: false},
		{code: "ABC-12", want: false},
		{code: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isResetCodeFormat(tt.code))
		})
	}
}
