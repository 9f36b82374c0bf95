// Package events carries the progress and error notifications a search
// streams to its caller, plus the fan-out machinery (hub, unix-socket
// bridge) the serve daemon uses to expose them to observers.
package events

// Error event ids the orchestrator classifies failures under. An error
// value implementing Identifier supplies its own id instead.
const (
	IDArtifactNotAccessible = "artifact-not-accessible"
	IDArtifactHandleFailed  = "artifact-handle-failed"
	IDGenericError          = "generic-error"
)

// Event is one notification frame. The concrete type determines the wire
// "type" field.
type Event interface {
	EventType() string
}

// ProgressEvent reports completion of one fetch batch. Fraction is
// completed-batches over the batch-count denominator, non-decreasing,
// ending at 1.0 after the final batch.
type ProgressEvent struct {
	Type     string  `json:"type"`
	Fraction float64 `json:"fraction"`
}

func (ProgressEvent) EventType() string { return "progress" }

// Progress builds a progress event.
func Progress(fraction float64) ProgressEvent {
	return ProgressEvent{Type: "progress", Fraction: fraction}
}

// ErrorEvent reports one recoverable failure. ID classifies the failure;
// Message carries the human-readable detail.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (ErrorEvent) EventType() string { return "error" }

// Error builds an error event.
func Error(message, id string) ErrorEvent {
	if id == "" {
		id = IDGenericError
	}
	return ErrorEvent{Type: "error", Message: message, ID: id}
}

// Identifier lets an error carry its own event id. Errors without it are
// reported as generic-error.
type Identifier interface {
	EventID() string
}

// IDForError extracts the event id an error classifies under.
func IDForError(err error) string {
	if ider, ok := err.(Identifier); ok {
		return ider.EventID()
	}
	return IDGenericError
}
