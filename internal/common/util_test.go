package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"salt", 16},
		{"session secret", 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := GenerateRandByteArray(tt.size)
			require.NotNil(t, b)
			assert.Len(t, b, tt.size)
		})
	}
}

func TestGenerateRandByteArray_CallsDiffer(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)
	assert.False(t, bytes.Equal(a, b))
	assert.False(t, bytes.Equal(a, make([]byte, 32)), "not left zeroed")
}

func TestWipeByteArray(t *testing.T) {
	secret := []byte("correct horse battery staple")
	view := secret[8:13]

	WipeByteArray(secret)
	assert.Equal(t, make([]byte, len(secret)), secret)
	assert.Equal(t, make([]byte, 5), view, "shared backing array is wiped too")

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
