package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "finetrack/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Append(ctx, audit.Event{Subject: "f1", Action: string(audit.EventFineIssued)}))
	require.NoError(t, s.Append(ctx, audit.Event{Subject: "f2", Action: string(audit.EventFineIssued)}))
	require.NoError(t, s.Append(ctx, audit.Event{Subject: "f1", Action: string(audit.EventFinePaid)}))

	f1, err := s.ListBySubject(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, f1, 2)
	assert.Equal(t, string(audit.EventFineIssued), f1[0].Action)
	assert.Equal(t, audit.CategoryCompliance, f1[0].Category)
	assert.NotEmpty(t, f1[0].ID)

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, string(audit.EventFinePaid), recent[0].Action)
	assert.Equal(t, "f2", recent[1].Subject)

	s.Clear()
	all, err := s.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
