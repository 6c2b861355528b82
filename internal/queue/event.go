// Package queue defines message payloads exchanged over the message broker
// and the consumer that delivers them.
package queue

// Kinds of outbound mail the service sends.
const (
	EmailKindVerify  = "verify_email"
	EmailKindWelcome = "welcome"
	EmailKindReset   = "password_reset"
)

// EmailQueuedEvent is published whenever the API needs an email delivered.
// The consumer owns delivery so that slow or failing mail never blocks a
// request.
type EmailQueuedEvent struct {
	Kind     string `json:"kind"`
	UserID   string `json:"user_id"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	QueuedAt string `json:"queued_at"`
}
