package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Order codes are what customers read out at the register, so they are
// short, uppercase and unambiguous to type.
const (
	codeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var codeAlphabetSize = big.NewInt(int64(len(codeAlphabet)))

// newOrderCode generates a random 8-character uppercase alphanumeric code.
// Uniqueness is enforced by the database; collisions make the caller retry
// with a fresh code.
func newOrderCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, codeAlphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate order code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
