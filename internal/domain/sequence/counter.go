package sequence

import (
	"context"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
)

// Counter draws and resets sequence values. Implementations must hand out
// unique values under concurrent callers. A counter that cannot produce a
// value returns an error; it never returns an empty string with a nil error.
type Counter interface {
	// Next returns the next formatted value for code
	Next(ctx context.Context, tenantID uuid.UUID, code string) (string, error)
	// Reset makes the next value for code start at 1
	Reset(ctx context.Context, tenantID uuid.UUID, code string) error
}

// Peeker is implemented by counters that keep the live value outside the
// sequences table. PeekNext reports the number Next would hand out without
// drawing it.
type Peeker interface {
	PeekNext(ctx context.Context, tenantID uuid.UUID, code string) (int64, error)
}

// Sequence errors
var (
	ErrSequenceNotFound      = shared.NewDomainError("NOT_FOUND", "Sequence not found")
	ErrSequenceUnavailable   = shared.NewDomainError("SEQUENCE_UNAVAILABLE", "Sequence service did not return a value")
	ErrSequenceMisconfigured = shared.NewDomainError("SEQUENCE_MISCONFIGURED", "Sequence increment must be positive")
)

// Repository persists sequence rows
type Repository interface {
	// FindByCode finds a tenant's sequence by code
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Sequence, error)

	// FindByCodeForUpdate finds a sequence and locks its row for the current transaction
	FindByCodeForUpdate(ctx context.Context, tenantID uuid.UUID, code string) (*Sequence, error)

	// FindAllForTenant lists every sequence of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Sequence, error)

	// Save creates or updates a sequence
	Save(ctx context.Context, seq *Sequence) error
}
