package pos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(fields []shared.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

// stubCounter hands out 1, 2, 3... per code
type stubCounter struct {
	values map[string]int
	err    error
	empty  bool
}

func newStubCounter() *stubCounter {
	return &stubCounter{values: map[string]int{}}
}

func (c *stubCounter) Next(_ context.Context, _ uuid.UUID, code string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.empty {
		return "", nil
	}
	c.values[code]++
	if code == sequence.CodeFolio {
		return fmt.Sprintf("F%06d", c.values[code]), nil
	}
	return fmt.Sprint(c.values[code]), nil
}

func (c *stubCounter) Reset(_ context.Context, _ uuid.UUID, code string) error {
	c.values[code] = 0
	return nil
}

func TestFormatOrderNumber(t *testing.T) {
	may := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		seq  string
		want string
	}{
		{"1", "VENTA/2024/05/0001"},
		{"42", "VENTA/2024/05/0042"},
		{"9999", "VENTA/2024/05/9999"},
		{"12345", "VENTA/2024/05/12345"},
		{"-7", "VENTA/2024/05/-007"},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOrderNumber(may, tt.seq))
		})
	}
}

func TestNumberAssigner_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("consecutive orders in the same month", func(t *testing.T) {
		assigner := NewNumberAssigner(newStubCounter(), time.UTC)

		first := newTestOrder(t)
		first.CreatedAt = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
		second := newTestOrder(t)
		second.CreatedAt = time.Date(2024, 5, 30, 18, 0, 0, 0, time.UTC)

		require.NoError(t, assigner.Assign(ctx, first))
		require.NoError(t, assigner.Assign(ctx, second))

		assert.Equal(t, "VENTA/2024/05/0001", first.OrderNumber)
		assert.Equal(t, "VENTA/2024/05/0002", second.OrderNumber)
		assert.Equal(t, "F000001", first.FolioNumber)
		assert.Equal(t, "F000002", second.FolioNumber)
	})

	t.Run("period uses the configured location", func(t *testing.T) {
		loc := time.FixedZone("CST", -6*60*60)
		assigner := NewNumberAssigner(newStubCounter(), loc)

		order := newTestOrder(t)
		// 03:00 UTC on June 1st is still May 31st at UTC-6
		order.CreatedAt = time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
		require.NoError(t, assigner.Assign(ctx, order))
		assert.Equal(t, "VENTA/2024/05/0001", order.OrderNumber)
	})

	t.Run("counter failure is surfaced", func(t *testing.T) {
		counter := newStubCounter()
		counter.err = errors.New("connection refused")
		order := newTestOrder(t)

		err := NewNumberAssigner(counter, nil).Assign(ctx, order)
		assert.EqualError(t, err, "connection refused")
		assert.False(t, order.IsNumbered())
		assert.Empty(t, order.FolioNumber)
	})

	t.Run("empty counter value is an error", func(t *testing.T) {
		counter := newStubCounter()
		counter.empty = true
		order := newTestOrder(t)

		err := NewNumberAssigner(counter, nil).Assign(ctx, order)
		assert.ErrorIs(t, err, sequence.ErrSequenceUnavailable)
		assert.False(t, order.IsNumbered())
	})

	t.Run("numbered order is not renumbered", func(t *testing.T) {
		counter := newStubCounter()
		assigner := NewNumberAssigner(counter, nil)
		order := newTestOrder(t)
		require.NoError(t, assigner.Assign(ctx, order))

		err := assigner.Assign(ctx, order)
		assert.ErrorIs(t, err, ErrOrderAlreadyNumbered)
		assert.Equal(t, 1, counter.values[sequence.CodeOrder])
	})
}
