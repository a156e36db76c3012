package model

import "time"

// SecurityEvent is one recorded authentication action.
type SecurityEvent struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	Username   string    `json:"username,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventStatusOK     = "ok"
	EventStatusDenied = "denied"
)

// SecurityEventQuery filters the audit listing.
type SecurityEventQuery struct {
	Action   string
	Username string
	Page     int
	Limit    int
}
