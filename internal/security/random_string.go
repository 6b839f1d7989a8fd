package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// AlphaNumeric is used for opaque tokens that never get typed by hand.
	AlphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Readable drops look-alike characters (0/O, 1/l/I) for values an operator
	// has to read out or type.
	Readable = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

var (
	ErrInvalidLength   = errors.New("random string length must be non-negative")
	ErrInvalidAlphabet = errors.New("random string alphabet must hold 1 to 256 bytes")
)

// RandomString draws length characters from alphabet using crypto/rand.
// Bytes at or above the largest multiple of len(alphabet) are rejected so
// every character is equally likely.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", ErrInvalidLength
	}
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", ErrInvalidAlphabet
	}
	if length == 0 {
		return "", nil
	}

	size := len(alphabet)
	ceiling := 256 - 256%size
	out := make([]byte, 0, length)
	buffer := make([]byte, length+length/2+1)
	for len(out) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buffer {
			if int(b) >= ceiling {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// Token returns an AlphaNumeric random string.
func Token(length int) (string, error) {
	return RandomString(length, AlphaNumeric)
}
