package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserVerified           EventType = "user_verified"
	EventOTPRequested           EventType = "otp_requested"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Event represents a domain event emitted by the auth flows.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OTPPayload carries a one-time code to be delivered by mail.
type OTPPayload struct {
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// VerifyLinkPayload carries an email-link verification token.
type VerifyLinkPayload struct {
	Token string `json:"token"`
}
