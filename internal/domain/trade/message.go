package trade

import "time"

// MessageKind classifies an order notification
type MessageKind string

const (
	MessageKindCreditCheck  MessageKind = "credit_check"
	MessageKindApproval     MessageKind = "approval"
	MessageKindConfirmation MessageKind = "confirmation"
)

// OrderMessage is a notification posted on an order
type OrderMessage struct {
	Kind     MessageKind `json:"kind"`
	Body     string      `json:"body"`
	PostedAt time.Time   `json:"posted_at"`
}
