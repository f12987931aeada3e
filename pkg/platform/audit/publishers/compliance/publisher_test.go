package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "finetrack/pkg/platform/audit"
	"finetrack/pkg/platform/audit/store/memory"
)

type failingStore struct{ audit.Store }

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists with compliance category", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		p := New(store)
		require.NoError(t, p.Emit(ctx, audit.Event{Subject: "f1", Action: string(audit.EventFineIssued)}))

		events, err := store.ListBySubject(ctx, "f1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
	})

	t.Run("requires subject and action", func(t *testing.T) {
		p := New(memory.NewInMemoryStore())
		assert.Error(t, p.Emit(ctx, audit.Event{Action: string(audit.EventFineIssued)}))
		assert.Error(t, p.Emit(ctx, audit.Event{Subject: "f1"}))
	})

	t.Run("fails closed", func(t *testing.T) {
		p := New(failingStore{})
		err := p.Emit(ctx, audit.Event{Subject: "f1", Action: string(audit.EventFinePaid)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}
