package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/eventlog/domain"
	"github.com/voltgrid/gc-registry/internal/eventlog/repository"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, name string) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Event{}))

	return NewService(Params{
		DB:    db.WriterDB{DB: conn},
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestAppend_PreservesOrder(t *testing.T) {
	svc := newTestService(t, "eventlog_order")
	ctx := context.Background()

	err := svc.Append(ctx, domain.StreamRegistry, domain.AnyVersion, []domain.NewEvent{
		{EntityID: 1, EntityName: "Widget", EventType: domain.EventTypeCreate},
		{EntityID: 2, EntityName: "Widget", EventType: domain.EventTypeCreate},
		{EntityID: 1, EntityName: "Widget", EventType: domain.EventTypeUpdate},
	})
	require.NoError(t, err)

	events, err := svc.Read(ctx, domain.StreamRegistry, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, int64(1), events[0].EntityID)
	assert.Equal(t, int64(2), events[1].EntityID)
	assert.Equal(t, domain.EventTypeUpdate, events[2].EventType)
	assert.Less(t, events[0].Position, events[1].Position)
	assert.Less(t, events[1].Position, events[2].Position)
}

func TestAppend_VersionConflict(t *testing.T) {
	svc := newTestService(t, "eventlog_conflict")
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, domain.StreamRegistry, domain.AnyVersion, []domain.NewEvent{
		{EntityID: 1, EntityName: "Widget", EventType: domain.EventTypeCreate},
	}))

	err := svc.Append(ctx, domain.StreamRegistry, 0, []domain.NewEvent{
		{EntityID: 2, EntityName: "Widget", EventType: domain.EventTypeCreate},
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	err = svc.Append(ctx, domain.StreamRegistry, 1, []domain.NewEvent{
		{EntityID: 2, EntityName: "Widget", EventType: domain.EventTypeCreate},
	})
	assert.NoError(t, err)
}

func TestAppend_Empty(t *testing.T) {
	svc := newTestService(t, "eventlog_empty")

	err := svc.Append(context.Background(), domain.StreamRegistry, domain.AnyVersion, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyAppend)
}

func TestRead_FromPosition(t *testing.T) {
	svc := newTestService(t, "eventlog_from")
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, domain.StreamRegistry, domain.AnyVersion, []domain.NewEvent{
		{EntityID: 1, EntityName: "Widget", EventType: domain.EventTypeCreate},
		{EntityID: 2, EntityName: "Widget", EventType: domain.EventTypeCreate},
	}))

	events, err := svc.Read(ctx, domain.StreamRegistry, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].EntityID)
}
