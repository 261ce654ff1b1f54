package sequence

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metrics records sequence business metrics
type Metrics interface {
	RecordSequenceReset(ctx context.Context, tenantID uuid.UUID, code string)
}

// SequenceService exposes the tenant's sequences and manual resets
type SequenceService struct {
	scope          unitofwork.Scope
	sequenceRepo   sequence.Repository
	eventPublisher shared.EventPublisher
	metrics        Metrics
	live           sequence.Peeker
	logger         *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(scope unitofwork.Scope, sequenceRepo sequence.Repository, logger *zap.Logger) *SequenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequenceService{
		scope:        scope,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SequenceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *SequenceService) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// SetLiveCounter makes reads report the counter's next number instead of the
// stored row. Needed when numbers are drawn outside the sequences table.
func (s *SequenceService) SetLiveCounter(live sequence.Peeker) {
	s.live = live
}

// withLiveNumber replaces the stored next number with the live counter's
func (s *SequenceService) withLiveNumber(ctx context.Context, tenantID uuid.UUID, resp *SequenceResponse) error {
	if s.live == nil {
		return nil
	}
	next, err := s.live.PeekNext(ctx, tenantID, resp.Code)
	if err != nil {
		return err
	}
	resp.NumberNext = next
	resp.NextValue = (&sequence.Sequence{Prefix: resp.Prefix, Padding: resp.Padding}).Format(next)
	return nil
}

// List returns the tenant's sequences, including defaults not created yet,
// sorted by code
func (s *SequenceService) List(ctx context.Context, tenantID uuid.UUID) ([]SequenceResponse, error) {
	stored, err := s.sequenceRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stored))
	responses := make([]SequenceResponse, 0, len(stored)+3)
	for i := range stored {
		seen[stored[i].Code] = true
		responses = append(responses, ToSequenceResponse(&stored[i]))
	}
	for code, def := range sequence.DefaultDefinitions() {
		if !seen[code] {
			responses = append(responses, definitionResponse(def))
		}
	}

	for i := range responses {
		if err := s.withLiveNumber(ctx, tenantID, &responses[i]); err != nil {
			return nil, err
		}
	}

	sort.Slice(responses, func(i, j int) bool { return responses[i].Code < responses[j].Code })
	return responses, nil
}

// Get returns one sequence by code
func (s *SequenceService) Get(ctx context.Context, tenantID uuid.UUID, code string) (*SequenceResponse, error) {
	code = strings.TrimSpace(code)
	var response SequenceResponse
	seq, err := s.sequenceRepo.FindByCode(ctx, tenantID, code)
	switch {
	case err == nil:
		response = ToSequenceResponse(seq)
	case errors.Is(err, shared.ErrNotFound):
		def, ok := sequence.LookupDefinition(code)
		if !ok {
			return nil, sequence.ErrSequenceNotFound
		}
		response = definitionResponse(def)
	default:
		return nil, err
	}

	if err := s.withLiveNumber(ctx, tenantID, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Reset makes the next number of a sequence 1, e.g. at a month boundary
func (s *SequenceService) Reset(ctx context.Context, tenantID uuid.UUID, code string, req ResetSequenceRequest) (*ResetSequenceResponse, error) {
	code = strings.TrimSpace(code)
	ctx, span := telemetry.StartServiceSpan(ctx, "sequence", "reset")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSequenceCode, code,
	)

	var (
		seq      *sequence.Sequence
		previous int64
	)

	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		seq, err = repos.Sequences().FindByCodeForUpdate(ctx, tenantID, code)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			def, ok := sequence.LookupDefinition(code)
			if !ok {
				return sequence.ErrSequenceNotFound
			}
			if seq, err = sequence.NewSequence(tenantID, def); err != nil {
				return err
			}
			if err := repos.Sequences().Save(ctx, seq); err != nil {
				return err
			}
		}

		var live int64
		if s.live != nil {
			if live, err = s.live.PeekNext(ctx, tenantID, code); err != nil {
				return err
			}
		}
		if err := repos.Counter().Reset(ctx, tenantID, code); err != nil {
			return err
		}
		previous = seq.Reset()
		if s.live != nil {
			previous = live
		}
		seq.AddDomainEvent(sequence.NewSequenceResetEvent(seq, previous, strings.TrimSpace(req.Reason)))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("sequence reset",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", code),
		zap.Int64("previous_number", previous),
		zap.String("reason", req.Reason),
	)
	if s.metrics != nil {
		s.metrics.RecordSequenceReset(ctx, tenantID, code)
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, seq)

	return &ResetSequenceResponse{
		SequenceResponse: ToSequenceResponse(seq),
		PreviousNumber:   previous,
	}, nil
}
