package repository

import (
	"context"

	"github.com/voltgrid/gc-registry/internal/eventlog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() Repository {
	return &repo{}
}

// Repository is the storage side of the event stream. Inserts preserve the
// order of the slice passed in; positions are assigned by the store.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, events []*domain.Event) error
	HeadPosition(ctx context.Context, db *gorm.DB, stream string) (int64, error)
	ListFrom(ctx context.Context, db *gorm.DB, stream string, fromPosition int64) ([]domain.Event, error)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	// One row at a time so autoincrement positions follow slice order on
	// every dialect.
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) HeadPosition(ctx context.Context, db *gorm.DB, stream string) (int64, error) {
	var head *int64
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("stream = ?", stream).
		Select("max(position)").
		Scan(&head).Error
	if err != nil {
		return 0, err
	}
	if head == nil {
		return 0, nil
	}
	return *head, nil
}

func (r *repo) ListFrom(ctx context.Context, db *gorm.DB, stream string, fromPosition int64) ([]domain.Event, error) {
	var events []domain.Event
	err := db.WithContext(ctx).
		Where("stream = ? AND position >= ?", stream, fromPosition).
		Order("position asc").
		Find(&events).Error
	return events, err
}
