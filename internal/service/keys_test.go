package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/keybot/core/apperrors"
)

func TestValidateKeyValue(t *testing.T) {
	key, err := ValidateKeyValue("  ABCDE  ")
	assert.NoError(t, err)
	assert.Equal(t, "ABCDE", key)

	_, err = ValidateKeyValue("abcd")
	assert.True(t, apperrors.IsValidation(err))

	_, err = ValidateKeyValue("   ab   ")
	assert.True(t, apperrors.IsValidation(err))

	key, err = ValidateKeyValue("vpn-key-2024-xyz")
	assert.NoError(t, err)
	assert.Equal(t, "vpn-key-2024-xyz", key)
}

func TestValidateKeyValueCountsRunes(t *testing.T) {
	// Three Cyrillic characters are six bytes but still too short.
	_, err := ValidateKeyValue("абв")
	assert.True(t, apperrors.IsValidation(err))

	key, err := ValidateKeyValue("ключи")
	assert.NoError(t, err)
	assert.Equal(t, "ключи", key)
}
