package domain

import (
	"crypto/rand"
	"math/big"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length of rotated invite codes, matching the original shared
	// tokens owners hand to incoming tenants.
	InviteCodeLength = 8
)

// DeriveFlatCode builds the initial code for a new flat.
func DeriveFlatCode(propertyCode, flatNumber string) string {
	return propertyCode + "-F" + flatNumber
}

// GenerateInviteCode returns a random base36 token. Uniqueness is the
// caller's problem: probe the registry and retry on collision.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
