package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/service-marketplace/internal/model"
)

func TestScheduleRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.catalog

	offering, err := f.provisioning.ProvideService(ctx,
		model.OfferedService{ProviderID: c.Provider.ID, ServiceID: c.Sweeping.ID},
		oneLocation(),
	)
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	req, err := f.requests.Schedule(ctx, ScheduleRequest{
		ClientID:         c.Client.ID,
		OfferedServiceID: offering.ID,
		ScheduledFor:     day,
		Details:          json.RawMessage(`{"address":"Calle 1"}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.ID)
	assert.Equal(t, model.RequestStatusPending, req.Status)

	clientHistory, err := f.requests.ClientHistory(ctx, c.Client.ID)
	require.NoError(t, err)
	require.Len(t, clientHistory, 1)
	assert.Equal(t, req.ID, clientHistory[0].RequestID)
	assert.Equal(t, "Sweeping", clientHistory[0].Title)
	assert.Equal(t, c.Provider.ID, clientHistory[0].ProviderID)

	providerHistory, err := f.requests.ProviderHistory(ctx, c.Provider.ID)
	require.NoError(t, err)
	require.Len(t, providerHistory, 1)

	otherHistory, err := f.requests.ProviderHistory(ctx, c.OtherProvider.ID)
	require.NoError(t, err)
	assert.Empty(t, otherHistory)
}

func TestScheduleRequest_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.catalog

	offering, err := f.provisioning.ProvideService(ctx,
		model.OfferedService{ProviderID: c.Provider.ID, ServiceID: c.Mowing.ID},
		oneLocation(),
	)
	require.NoError(t, err)

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err = f.requests.Schedule(ctx, ScheduleRequest{ClientID: uuid.New(), OfferedServiceID: offering.ID, ScheduledFor: day})
	require.ErrorIs(t, err, ErrClientNotFound)

	_, err = f.requests.Schedule(ctx, ScheduleRequest{ClientID: c.Client.ID, OfferedServiceID: uuid.New(), ScheduledFor: day})
	require.ErrorIs(t, err, ErrOfferingNotFound)

	_, err = f.requests.Schedule(ctx, ScheduleRequest{ClientID: c.Client.ID, OfferedServiceID: offering.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.requests.Schedule(ctx, ScheduleRequest{
		ClientID: c.Client.ID, OfferedServiceID: offering.ID, ScheduledFor: day,
		Details: json.RawMessage(`{broken`),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.provisioning.ChangeOfferedServiceState(ctx, offering.ID, model.OfferingStateInactive)
	require.NoError(t, err)
	_, err = f.requests.Schedule(ctx, ScheduleRequest{ClientID: c.Client.ID, OfferedServiceID: offering.ID, ScheduledFor: day})
	require.ErrorIs(t, err, ErrOfferingInactive)
}
