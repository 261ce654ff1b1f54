package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
)

// Well-known sequence codes
const (
	CodeFolio   = "punto.venta.folio"
	CodeOrder   = "punto.venta.order"
	CodePayment = "punto.venta.payment"
)

// AggregateTypeSequence is the aggregate type name for sequence events
const AggregateTypeSequence = "Sequence"

// Sequence is a named, tenant-scoped monotonic counter with display formatting.
// NumberNext is the value the next call to Next will hand out.
type Sequence struct {
	shared.TenantAggregateRoot
	Code            string
	Name            string
	Prefix          string
	Padding         int
	NumberNext      int64
	NumberIncrement int64
}

// Definition describes a sequence to create on first use
type Definition struct {
	Code      string
	Name      string
	Prefix    string
	Padding   int
	Increment int64
}

// DefaultDefinitions are created lazily the first time a tenant draws from them
func DefaultDefinitions() map[string]Definition {
	return map[string]Definition{
		CodeFolio:   {Code: CodeFolio, Name: "Folio de venta", Prefix: "F", Padding: 6, Increment: 1},
		CodeOrder:   {Code: CodeOrder, Name: "Orden de venta", Prefix: "", Padding: 0, Increment: 1},
		CodePayment: {Code: CodePayment, Name: "Pago de venta", Prefix: "PAGO/", Padding: 5, Increment: 1},
	}
}

// LookupDefinition returns the default definition for code
func LookupDefinition(code string) (Definition, bool) {
	def, ok := DefaultDefinitions()[code]
	return def, ok
}

// NewSequence creates a sequence starting at 1
func NewSequence(tenantID uuid.UUID, def Definition) (*Sequence, error) {
	if strings.TrimSpace(def.Code) == "" {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_CODE", "Sequence code cannot be empty")
	}
	if len(def.Code) > 64 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_CODE", "Sequence code cannot exceed 64 characters")
	}
	if def.Padding < 0 || def.Padding > 16 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_PADDING", "Sequence padding must be between 0 and 16")
	}
	increment := def.Increment
	if increment == 0 {
		increment = 1
	}
	if increment < 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_INCREMENT", "Sequence increment must be positive")
	}
	name := def.Name
	if name == "" {
		name = def.Code
	}

	return &Sequence{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                def.Code,
		Name:                name,
		Prefix:              def.Prefix,
		Padding:             def.Padding,
		NumberNext:          1,
		NumberIncrement:     increment,
	}, nil
}

// Next hands out the current number, formatted, and advances the counter
func (s *Sequence) Next() (string, error) {
	if s.NumberIncrement <= 0 {
		return "", ErrSequenceMisconfigured
	}
	if s.NumberNext < 1 {
		s.NumberNext = 1
	}
	value := s.Format(s.NumberNext)
	s.NumberNext += s.NumberIncrement
	s.Touch()
	return value, nil
}

// Reset makes the next drawn number 1 again and returns the number it replaced
func (s *Sequence) Reset() int64 {
	previous := s.NumberNext
	s.NumberNext = 1
	s.Touch()
	return previous
}

// Format renders n with the sequence prefix and zero padding
func (s *Sequence) Format(n int64) string {
	num := strconv.FormatInt(n, 10)
	if s.Padding > 0 && len(num) < s.Padding {
		num = strings.Repeat("0", s.Padding-len(num)) + num
	}
	return s.Prefix + num
}

// String is used in logs
func (s *Sequence) String() string {
	return fmt.Sprintf("%s(next=%d)", s.Code, s.NumberNext)
}
