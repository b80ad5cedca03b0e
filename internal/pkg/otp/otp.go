package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultLength is the passcode length used when none is configured.
const DefaultLength = 6

var (
	// ErrInvalidLength is returned when a non-positive length is requested.
	ErrInvalidLength = errors.New("otp: length must be at least 1")
	// ErrDigitOutOfRange is returned when a DigitSource yields a value outside 0-9.
	ErrDigitOutOfRange = errors.New("otp: digit out of range")
)

// DigitSource yields decimal digits, each uniformly distributed over 0-9.
type DigitSource interface {
	NextDigit() (int, error)
}

// CryptoDigits is a DigitSource backed by a cryptographic random reader.
type CryptoDigits struct {
	r io.Reader
}

// NewCryptoDigits returns a DigitSource reading crypto/rand.
func NewCryptoDigits() *CryptoDigits {
	return &CryptoDigits{r: rand.Reader}
}

// NextDigit returns one uniform digit. Bytes >= 250 are rejected because
// 256 is not a multiple of 10.
func (c *CryptoDigits) NextDigit() (int, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(c.r, b[:]); err != nil {
			return 0, fmt.Errorf("otp: read random: %w", err)
		}
		if b[0] < 250 {
			return int(b[0] % 10), nil
		}
	}
}

// Generator builds numeric passcodes.
type Generator struct {
	src DigitSource
}

// NewGenerator returns a Generator using src, or crypto/rand when src is nil.
func NewGenerator(src DigitSource) *Generator {
	if src == nil {
		src = NewCryptoDigits()
	}

	return &Generator{src: src}
}

// Generate returns exactly length decimal digits. Leading zeros are kept.
func (g *Generator) Generate(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}

	var sb strings.Builder
	sb.Grow(length)
	for range length {
		d, err := g.src.NextDigit()
		if err != nil {
			return "", err
		}
		if d < 0 || d > 9 {
			return "", fmt.Errorf("%w: %d", ErrDigitOutOfRange, d)
		}
		sb.WriteByte(byte('0' + d))
	}

	return sb.String(), nil
}
