package sequence

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/sequence"
)

// ResetSequenceRequest represents a manual sequence reset
type ResetSequenceRequest struct {
	Reason string `json:"reason" binding:"max=200"`
}

// SequenceResponse represents a sequence in API responses. Persisted is
// false for a default sequence no number has been drawn from yet.
type SequenceResponse struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Prefix          string     `json:"prefix"`
	Padding         int        `json:"padding"`
	NumberNext      int64      `json:"number_next"`
	NumberIncrement int64      `json:"number_increment"`
	NextValue       string     `json:"next_value"`
	Persisted       bool       `json:"persisted"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ResetSequenceResponse reports a manual reset
type ResetSequenceResponse struct {
	SequenceResponse
	PreviousNumber int64 `json:"previous_number"`
}

// ToSequenceResponse converts a stored sequence
func ToSequenceResponse(s *sequence.Sequence) SequenceResponse {
	updatedAt := s.UpdatedAt
	return SequenceResponse{
		Code:            s.Code,
		Name:            s.Name,
		Prefix:          s.Prefix,
		Padding:         s.Padding,
		NumberNext:      s.NumberNext,
		NumberIncrement: s.NumberIncrement,
		NextValue:       s.Format(s.NumberNext),
		Persisted:       true,
		UpdatedAt:       &updatedAt,
	}
}

func definitionResponse(def sequence.Definition) SequenceResponse {
	seq := sequence.Sequence{Prefix: def.Prefix, Padding: def.Padding}
	increment := def.Increment
	if increment == 0 {
		increment = 1
	}
	return SequenceResponse{
		Code:            def.Code,
		Name:            def.Name,
		Prefix:          def.Prefix,
		Padding:         def.Padding,
		NumberNext:      1,
		NumberIncrement: increment,
		NextValue:       seq.Format(1),
	}
}
