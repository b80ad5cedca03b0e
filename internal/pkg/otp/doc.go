// Package otp generates short numeric one-time passcodes.
//
// A Generator draws every digit independently from a DigitSource. The default
// source reads crypto/rand and discards biased bytes, so each digit is exactly
// uniform over 0-9. Tests swap the source for a fixed sequence.
package otp
