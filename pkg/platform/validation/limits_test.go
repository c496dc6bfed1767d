package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "zkid/pkg/domain-errors"
)

func TestCheckStringLength(t *testing.T) {
	assert.NoError(t, CheckStringLength("symbol", strings.Repeat("Z", MaxRegistrySymbolLength), MaxRegistrySymbolLength))

	err := CheckStringLength("symbol", strings.Repeat("Z", MaxRegistrySymbolLength+1), MaxRegistrySymbolLength)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.EqualError(t, err, "symbol exceeds max length of 16")
}

func TestCheckBytes(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr string
	}{
		{"empty", 0, "proof is required"},
		{"one byte", 1, ""},
		{"at max", MaxProofSize, ""},
		{"over max", MaxProofSize + 1, "proof exceeds max size of 16384 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBytes("proof", make([]byte, tt.size), MaxProofSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
