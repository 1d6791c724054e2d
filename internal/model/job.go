package model

import (
	"encoding/json"
	"time"
)

// Job is one entry in the pending-jobs queue. Failed jobs stay failed until
// explicitly redriven.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Job statuses.
const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Notification is one entry in the send-history log.
type Notification struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Links     []string  `json:"links,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Notification channels.
const (
	ChannelMail = "mail"
	ChannelSMS  = "sms"
)

// AuditEntry records an administrative or system action.
type AuditEntry struct {
	ID      string    `json:"id"`
	ActorID string    `json:"actor_id,omitempty"`
	Action  string    `json:"action"`
	Subject string    `json:"subject,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
