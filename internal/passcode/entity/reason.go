package entity

// Reason is the outcome of a verification attempt.
type Reason string

const (
	// ReasonVerified means the code matched and the record was consumed.
	ReasonVerified Reason = "VERIFIED"
	// ReasonNotFound means no record exists for the identity.
	ReasonNotFound Reason = "NOT_FOUND"
	// ReasonExpired means the record outlived its TTL; it has been removed.
	ReasonExpired Reason = "EXPIRED"
	// ReasonExhausted means the attempt budget was spent; it has been removed.
	ReasonExhausted Reason = "EXHAUSTED"
	// ReasonMismatch means the code was wrong and the attempt was counted.
	ReasonMismatch Reason = "MISMATCH"
)

func (r Reason) String() string { return string(r) }

// Message is the human readable explanation of r.
func (r Reason) Message() string {
	switch r {
	case ReasonVerified:
		return "code verified"
	case ReasonNotFound:
		return "no pending code for this email"
	case ReasonExpired:
		return "code has expired"
	case ReasonExhausted:
		return "too many attempts, request a new code"
	case ReasonMismatch:
		return "code does not match"
	default:
		return "unknown outcome"
	}
}
