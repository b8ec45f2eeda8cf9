package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveFlatCode(t *testing.T) {
	require.Equal(t, "GV12-F101", DeriveFlatCode("GV12", "101"))
}

func TestGenerateInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		require.Len(t, code, InviteCodeLength)
		for _, r := range code {
			require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	// 100 draws from 36^8 colliding would mean a broken source.
	require.Greater(t, len(seen), 95)
}
