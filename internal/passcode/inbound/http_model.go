package inbound

import "time"

type IssueRequest struct {
	Email  string `json:"email"`
	Tenant string `json:"tenant"`
}

type IssueResponse struct {
	MessageID string    `json:"message_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (IssueResponse) Message() string {
	return "If the address can receive mail, a sign-in code is on its way."
}

type VerifyRequest struct {
	Email  string `json:"email"`
	Code   string `json:"code"`
	Tenant string `json:"tenant"`
}

type VerifyResponse struct {
	Valid      bool      `json:"valid"`
	Email      string    `json:"email"`
	Tenant     string    `json:"tenant"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (VerifyResponse) Message() string {
	return "Code verified"
}

type PendingEntry struct {
	Email     string    `json:"email"`
	Tenant    string    `json:"tenant"`
	Attempts  int       `json:"attempts"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty"`
}

type PendingResponse struct {
	Entries []PendingEntry `json:"entries"`
}

func (r PendingResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Entries)}
}

type SweepResponse struct {
	Removed int  `json:"removed"`
	Skipped bool `json:"skipped"`
}

func (SweepResponse) Message() string {
	return "Sweep finished"
}
