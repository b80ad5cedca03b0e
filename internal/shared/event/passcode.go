package event

import "time"

const (
	PasscodeIssuedDestination   string = "passcode_issued"
	PasscodeVerifiedDestination string = "passcode_verified"
	PasscodeRejectedDestination string = "passcode_rejected"
)

// Passcode events never carry the code itself.

type PasscodeIssuedMessage struct {
	Email     string    `json:"email"`
	Tenant    string    `json:"tenant"`
	MessageID string    `json:"message_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PasscodeVerifiedMessage struct {
	Email      string    `json:"email"`
	Tenant     string    `json:"tenant"`
	VerifiedAt time.Time `json:"verified_at"`
}

type PasscodeRejectedMessage struct {
	Email  string `json:"email"`
	Tenant string `json:"tenant"`
	Reason string `json:"reason"`
}
