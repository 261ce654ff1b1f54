package sequence

import "github.com/erp/puntoventa/internal/domain/shared"

// EventTypeSequenceReset is raised when a sequence restarts at 1
const EventTypeSequenceReset = "SequenceReset"

// SequenceResetEvent records a sequence restart
type SequenceResetEvent struct {
	shared.BaseDomainEvent
	Code           string `json:"code"`
	PreviousNumber int64  `json:"previous_number"`
	Reason         string `json:"reason"`
}

// NewSequenceResetEvent creates a new SequenceResetEvent
func NewSequenceResetEvent(s *Sequence, previous int64, reason string) *SequenceResetEvent {
	return &SequenceResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSequenceReset, AggregateTypeSequence, s.ID, s.TenantID),
		Code:            s.Code,
		PreviousNumber:  previous,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *SequenceResetEvent) EventType() string {
	return EventTypeSequenceReset
}
