package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/voltgrid/gc-registry/internal/clock"
	"github.com/voltgrid/gc-registry/internal/eventlog/domain"
	"github.com/voltgrid/gc-registry/internal/eventlog/repository"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    db.WriterDB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  repository.Repository
}

// Service appends mutation events to the write-of-record store. The stream is
// audit-only; nothing in the registry replays it to rebuild state.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  repository.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB.DB,
		log:   p.Log.Named("eventlog.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, stream string, expectedVersion int64, events []domain.NewEvent) error {
	if len(events) == 0 {
		return domain.ErrEmptyAppend
	}

	if expectedVersion != domain.AnyVersion {
		head, err := s.repo.HeadPosition(ctx, s.db, stream)
		if err != nil {
			return err
		}
		if head != expectedVersion {
			s.log.Warn("event append version conflict",
				zap.String("stream", stream),
				zap.Int64("expected", expectedVersion),
				zap.Int64("head", head),
			)
			return domain.ErrVersionConflict
		}
	}

	now := s.clock.Now()
	rows := make([]*domain.Event, 0, len(events))
	for _, event := range events {
		rows = append(rows, &domain.Event{
			EventID:          uuid.New(),
			Stream:           stream,
			EntityID:         event.EntityID,
			EntityName:       event.EntityName,
			EventType:        event.EventType,
			AttributesBefore: datatypes.JSONMap(event.AttributesBefore),
			AttributesAfter:  datatypes.JSONMap(event.AttributesAfter),
			Timestamp:        now,
		})
	}

	if err := s.repo.Insert(ctx, s.db, rows); err != nil {
		s.log.Error("failed to append events", zap.String("stream", stream), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Read(ctx context.Context, stream string, fromPosition int64) ([]domain.Event, error) {
	return s.repo.ListFrom(ctx, s.db, stream, fromPosition)
}
