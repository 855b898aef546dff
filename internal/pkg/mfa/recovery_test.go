package mfa

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryCodeGenerate(t *testing.T) {
	codes, err := NewRecoveryCode(0, 0).Generate()
	require.NoError(t, err)
	require.Len(t, codes, DefaultBatchSize)

	format := regexp.MustCompile(`^[0-9A-Za-z]{5}-[0-9A-Za-z]{5}$`)
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		assert.Regexp(t, format, code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, len(codes), "codes within a batch must be unique")
}

func TestRecoveryCodeGenerateCustomShape(t *testing.T) {
	codes, err := NewRecoveryCode(4, 6).Generate()
	require.NoError(t, err)
	require.Len(t, codes, 4)

	for _, code := range codes {
		assert.Regexp(t, `^[0-9A-Za-z]{6}-[0-9A-Za-z]{6}$`, code)
	}
}
