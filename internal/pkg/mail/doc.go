// Package mail sends email through a pluggable provider.
//
// Callers depend on the Mail interface and Message payload. SMTP speaks to any
// relay via net/smtp; Resend talks to the Resend HTTP API. NewFromDriver picks
// one from configuration and returns a nil Mail when delivery is switched off,
// which callers treat as "not configured".
package mail
