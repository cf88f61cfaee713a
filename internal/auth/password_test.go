package auth

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct-horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", hash)

	require.True(t, h.Matches(hash, "correct-horse"))
	require.False(t, h.Matches(hash, "battery-staple"))
	require.False(t, h.Matches("", "correct-horse"))

	_, err = h.Hash("")
	require.Error(t, err)
}

func TestGenerateCredential(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		cred, err := GenerateCredential()
		require.NoError(t, err)

		raw, err := base58.Decode(cred)
		require.NoError(t, err)
		require.Len(t, raw, credentialBytes)

		require.False(t, seen[cred], "credential repeated")
		seen[cred] = true
	}
}
