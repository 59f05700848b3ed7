package models

import "fmt"

// EventType identifies an observable engine event.
type EventType string

const (
	EventJarRegistered      EventType = "jar_registered"
	EventJarDeleted         EventType = "jar_deleted"
	EventTipSettled         EventType = "tip_settled"
	EventDeliveryFailed     EventType = "delivery_failed"
	EventEscrowWithdrawn    EventType = "escrow_withdrawn"
	EventPaused             EventType = "paused"
	EventUnpaused           EventType = "unpaused"
	EventFeeRecipientSet    EventType = "fee_recipient_set"
	EventAuthorityChanged   EventType = "authority_changed"
	EventEmergencyInitiated EventType = "emergency_initiated"
	EventEmergencyExecuted  EventType = "emergency_executed"
	EventEmergencyCancelled EventType = "emergency_cancelled"
)

// Event is an observable record of something the engine did. Delivery
// failures in particular are signalled here rather than as operation errors.
type Event struct {
	Type      EventType `json:"type"`
	Handle    string    `json:"handle,omitempty"`
	Identity  string    `json:"identity,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func (e *Event) String() string {
	switch e.Type {
	case EventTipSettled:
		return fmt.Sprintf("Tip settled: %d units to jar %q", e.Amount, e.Handle)
	case EventDeliveryFailed:
		return fmt.Sprintf("Delivery FAILED: %d units for %s held in escrow (%s)", e.Amount, e.Identity, e.Detail)
	case EventEmergencyInitiated:
		return fmt.Sprintf("Emergency withdrawal initiated, executable at %d", e.Timestamp)
	case EventEmergencyExecuted:
		return fmt.Sprintf("Emergency withdrawal executed: %d units swept", e.Amount)
	default:
		return fmt.Sprintf("%s handle=%s identity=%s amount=%d %s", e.Type, e.Handle, e.Identity, e.Amount, e.Detail)
	}
}

// EventSink receives engine events. Implementations must not block the
// calling operation.
type EventSink interface {
	Emit(event *Event)
}
