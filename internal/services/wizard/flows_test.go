package wizard

import (
	"context"
	"kr-eta-service/internal/adapters/sessions"
	"kr-eta-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlows(t *testing.T, entries ...*domain.Entry) (*Flows, *fixture, *sessions.MemorySessionStore) {
	t.Helper()

	f := newFixture(t, entries...)
	store := sessions.NewMemorySessionStore()
	return NewFlows(f.wizard, store, time.Minute), f, store
}

func TestFlowsRunToCompletion(t *testing.T) {
	flows, f, store := newFlows(t)
	ctx := context.Background()

	res, err := flows.Start(ctx, StepInput{GeocodingAPIKey: "geo", DirectionsAPIKey: "nav"})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingStart, res.Session.State)
	flowID := res.Session.ID

	stored, err := flows.Load(ctx, flowID)
	require.NoError(t, err)
	assert.Equal(t, res.Session, stored)

	res, err = flows.Advance(ctx, flowID, StepInput{Name: "A", Address: "A"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingEnd, res.Session.State)

	res, err = flows.Advance(ctx, flowID, StepInput{Name: "B", Address: "B"})
	require.NoError(t, err)
	require.True(t, res.Done())

	_, err = flows.Load(ctx, flowID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())

	entries, err := f.store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Routes, 1)
}

func TestFlowsStartWithoutKeysWaitsForCredentials(t *testing.T) {
	flows, _, _ := newFlows(t)
	ctx := context.Background()

	res, err := flows.Start(ctx, StepInput{})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCredentials, res.Session.State)
	assert.Empty(t, res.Errors)

	res, err = flows.Advance(ctx, res.Session.ID, StepInput{DirectionsAPIKey: "nav"})
	require.NoError(t, err)
	assert.Equal(t, domain.TagNeedAPIKeys, res.Errors["base"])
}

func TestFlowsRepromptIsPersisted(t *testing.T) {
	flows, _, _ := newFlows(t, existingEntry())
	ctx := context.Background()

	res, err := flows.Start(ctx, StepInput{})
	require.NoError(t, err)
	flowID := res.Session.ID

	res, err = flows.Advance(ctx, flowID, StepInput{Address: "A"})
	require.NoError(t, err)
	res, err = flows.Advance(ctx, flowID, StepInput{Address: "Nowhere"})
	require.NoError(t, err)
	assert.Equal(t, domain.TagAddressNotFound, res.Errors["base"])

	stored, err := flows.Load(ctx, flowID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingEnd, stored.State)
	require.NotNil(t, stored.Start)
	assert.Equal(t, "A", stored.Start.Address)
}

func TestFlowsAbandonLeavesNoTrace(t *testing.T) {
	flows, f, _ := newFlows(t)
	ctx := context.Background()

	res, err := flows.Start(ctx, StepInput{GeocodingAPIKey: "geo", DirectionsAPIKey: "nav"})
	require.NoError(t, err)
	_, err = flows.Advance(ctx, res.Session.ID, StepInput{Address: "A"})
	require.NoError(t, err)

	require.NoError(t, flows.Abandon(ctx, res.Session.ID))

	_, err = flows.Advance(ctx, res.Session.ID, StepInput{Address: "B"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	entries, err := f.store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, flows.Abandon(ctx, "unknown"), domain.ErrSessionNotFound)
}
