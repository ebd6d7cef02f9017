// Package audit defines the compliance audit trail for consent decisions.
// Events are emitted from domain logic and fanned out to sinks; keep the
// model transport-agnostic.
package audit

import "time"

// Event captures one consent-flow decision.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	// RequestID correlates the event with the HTTP request that produced it.
	RequestID string `json:"request_id,omitempty"`
	// Browser/OS come from parsed user-agent metadata for forensic context.
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
}

// Action names what happened.
type Action string

const (
	ActionConsentAutoApproved     Action = "consent_auto_approved"
	ActionConsentPrompted         Action = "consent_prompted"
	ActionConsentPermissionDenied Action = "consent_permission_denied"
	ActionUnknownClientRejected   Action = "unknown_client_rejected"
)
