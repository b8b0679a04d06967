package observability

// EventEnvelope wraps a domain event for publication on the message bus.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	RequestID string      `json:"request_id,omitempty"`
	IP        string      `json:"ip,omitempty"`
	Payload   interface{} `json:"payload"`
}
