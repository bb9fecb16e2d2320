package notify

import (
	"strings"

	"vision-fit-guide/backend/internal/scoring"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Lead is a saved fit guide ready to be announced.
type Lead struct {
	PublicID string
	Answers  scoring.AnswerSet
	Result   scoring.Result
}

// Status is the outcome of a single email.
type Status string

const (
	StatusSent    Status = "sent"
	StatusLogged  Status = "logged"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Report describes what happened to the internal alert and the pastor email.
type Report struct {
	Internal   Status   `json:"internal_email"`
	Pastor     Status   `json:"pastor_email"`
	InternalID string   `json:"internal_id,omitempty"`
	PastorID   string   `json:"pastor_id,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// Error joins the collected failures, or returns "" when both emails went through.
func (r Report) Error() string {
	return strings.Join(r.Errors, "; ")
}
