// Package domain contains the append-only audit event stream model.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StreamRegistry is the stream all registry mutations are appended to.
const StreamRegistry = "events"

// AnyVersion disables the optimistic version check on append.
const AnyVersion int64 = -1

type EventType string

const (
	EventTypeCreate EventType = "CREATE"
	EventTypeUpdate EventType = "UPDATE"
	EventTypeDelete EventType = "DELETE"
)

// Event is one committed mutation against a registry entity. Events are
// written once per mutation and never updated or removed; ordering within a
// stream is the append sequence.
type Event struct {
	Position         int64             `gorm:"primaryKey;autoIncrement"`
	EventID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	Stream           string            `gorm:"type:text;not null;index"`
	EntityID         int64             `gorm:"not null;index"`
	EntityName       string            `gorm:"type:text;not null"`
	EventType        EventType         `gorm:"type:text;not null"`
	AttributesBefore datatypes.JSONMap `gorm:"type:jsonb"`
	AttributesAfter  datatypes.JSONMap `gorm:"type:jsonb"`
	Timestamp        time.Time         `gorm:"not null"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "events" }

// NewEvent is an event pending append; the store assigns its position.
type NewEvent struct {
	EntityID         int64
	EntityName       string
	EventType        EventType
	AttributesBefore map[string]any
	AttributesAfter  map[string]any
}

type Service interface {
	// Append appends events to the stream in the order given. When
	// expectedVersion is not AnyVersion, the append fails with
	// ErrVersionConflict unless the stream's current head position matches.
	Append(ctx context.Context, stream string, expectedVersion int64, events []NewEvent) error
	// Read returns events of a stream at or after fromPosition, in append order.
	Read(ctx context.Context, stream string, fromPosition int64) ([]Event, error)
}

var (
	ErrVersionConflict = errors.New("event_stream_version_conflict")
	ErrEmptyAppend     = errors.New("empty_event_append")
)
