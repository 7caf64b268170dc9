package otp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// CodeDigits is the width of every code this package generates.
const CodeDigits = 6

// NewCode returns a uniformly random numeric code of the given width.
// Digits are drawn independently so leading zeros are possible; codes are
// therefore compared as strings, never as integers.
func NewCode(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// Normalize prepares a presented code for comparison against a stored one.
func Normalize(code string) string {
	return strings.TrimSpace(code)
}
