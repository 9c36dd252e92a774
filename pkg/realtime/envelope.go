package realtime

import (
	"encoding/json"
	"time"
)

// Known event types carried in the envelope's Type field. Servers may send
// additional types; they are dispatched to subscribers by exact string
// match, so unknown types are simply not delivered anywhere.
const (
	EventNotification = "notification"
	EventProofUpdate  = "proof_update"
	EventQuizUpdate   = "quiz_update"
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
)

// Envelope wraps every message on the wire, in both directions. The payload
// stays raw until a subscriber decodes it into its typed form.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope wraps a payload for sending, stamping the current time.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:      eventType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// NotificationPayload is the payload of EventNotification messages.
type NotificationPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

// Proof generation statuses pushed by the server.
const (
	ProofStatusPending    = "Pending"
	ProofStatusGenerating = "Generating"
	ProofStatusVerified   = "Verified"
	ProofStatusFailed     = "Failed"
)

// ProofUpdatePayload is the payload of EventProofUpdate messages.
type ProofUpdatePayload struct {
	ProofID  string `json:"proofId"`
	Status   string `json:"status"`
	Progress int    `json:"progress,omitempty"`
	Message  string `json:"message,omitempty"`
}

// QuizUpdatePayload is the payload of EventQuizUpdate messages.
type QuizUpdatePayload struct {
	QuizID         string `json:"quizId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	XPEarned       int    `json:"xpEarned,omitempty"`
}

// DecodePayload unmarshals an envelope's payload into its typed form.
func DecodePayload[T any](e Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Event is the decoded form of an envelope: one of NotificationEvent,
// ProofUpdateEvent, QuizUpdateEvent or UnknownEvent.
type Event interface {
	eventType() string
}

// NotificationEvent is a decoded EventNotification envelope.
type NotificationEvent struct {
	NotificationPayload
}

// ProofUpdateEvent is a decoded EventProofUpdate envelope.
type ProofUpdateEvent struct {
	ProofUpdatePayload
}

// QuizUpdateEvent is a decoded EventQuizUpdate envelope.
type QuizUpdateEvent struct {
	QuizUpdatePayload
}

// UnknownEvent carries an envelope of a type this client does not know.
// The raw payload is retained so callers can still inspect it.
type UnknownEvent struct {
	Type    string
	Payload json.RawMessage
}

func (NotificationEvent) eventType() string { return EventNotification }
func (ProofUpdateEvent) eventType() string  { return EventProofUpdate }
func (QuizUpdateEvent) eventType() string   { return EventQuizUpdate }
func (e UnknownEvent) eventType() string    { return e.Type }

// Decode turns an envelope into its typed event. Unknown types are not an
// error; they decode to UnknownEvent so forward-compatible callers can
// observe them.
func Decode(e Envelope) (Event, error) {
	switch e.Type {
	case EventNotification:
		p, err := DecodePayload[NotificationPayload](e)
		if err != nil {
			return nil, err
		}
		return NotificationEvent{p}, nil
	case EventProofUpdate:
		p, err := DecodePayload[ProofUpdatePayload](e)
		if err != nil {
			return nil, err
		}
		return ProofUpdateEvent{p}, nil
	case EventQuizUpdate:
		p, err := DecodePayload[QuizUpdatePayload](e)
		if err != nil {
			return nil, err
		}
		return QuizUpdateEvent{p}, nil
	default:
		return UnknownEvent{Type: e.Type, Payload: e.Payload}, nil
	}
}
