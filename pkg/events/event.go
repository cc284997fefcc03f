package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation the publishers and
// subscribers exchange.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeDocumentIngested  = "DOCUMENT_INGESTED"
	TypeDocumentDeleted   = "DOCUMENT_DELETED"
	TypeDocumentReindexed = "DOCUMENT_REINDEXED"
	TypeChatCompleted     = "CHAT_COMPLETED"
)

func NewDocumentIngested(documentID, name string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"name":        name,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(documentID string) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentID,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentReindexed(documentID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentReindexed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatCompleted(sessionID, messageID string, toolCalls int) Event {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"message_id": messageID,
			"tool_calls": toolCalls,
		},
		OccurredAt: time.Now(),
	}
}
