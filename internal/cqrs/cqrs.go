// Package cqrs implements the write-through persistence discipline: every
// mutation lands on the write-of-record store first, is mirrored into the
// read store, and is paired with an audit event. The two stores are not
// joined by a two-phase commit; the writer is authoritative and the mirror is
// eventually consistent.
package cqrs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/voltgrid/gc-registry/internal/eventlog/domain"
	"github.com/voltgrid/gc-registry/internal/observability/metrics"
	"github.com/voltgrid/gc-registry/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entity is anything the write-through layer can persist. Entities carry
// their own IDs (assigned before insert) so the same row lands identically in
// both stores.
type Entity interface {
	GetID() snowflake.ID
	EntityName() string
	MarkDeleted()
}

// Reconciler is the named extension point invoked when the read mirror
// diverges from the committed writer state. The default installation logs and
// moves on; a repair implementation can re-copy the affected rows.
type Reconciler interface {
	Repair(ctx context.Context, entities []Entity) error
}

// PersistenceError wraps a store failure during a write-through operation.
type PersistenceError struct {
	Op    string
	Store string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s on %s store: %v", e.Op, e.Store, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type Params struct {
	fx.In

	Write      db.WriterDB
	Read       db.ReaderDB
	Log        *zap.Logger
	Events     eventdomain.Service
	Reconciler Reconciler       `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	write      *gorm.DB
	read       *gorm.DB
	log        *zap.Logger
	events     eventdomain.Service
	reconciler Reconciler
	metrics    *metrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		write:      p.Write.DB,
		read:       p.Read.DB,
		log:        p.Log.Named("cqrs"),
		events:     p.Events,
		reconciler: p.Reconciler,
		metrics:    p.Metrics,
	}
}

// Session batches write-through operations into one logical transaction.
// Operations stage onto both store transactions; events accumulate and are
// appended only once both commits succeed, in operation order.
type Session struct {
	svc     *Service
	writeTx *gorm.DB
	readTx  *gorm.DB
	touched []Entity
	pending []eventdomain.NewEvent
}

// Transaction runs fn inside a logical dual-store transaction. If fn returns
// an error, both stores roll back and no events are recorded. The write store
// commits first; a mirror commit failure after that point is surfaced as a
// PersistenceError and handed to the reconciler, since the committed writer
// state can no longer be rolled back.
func (s *Service) Transaction(ctx context.Context, fn func(sess *Session) error) error {
	writeTx := s.write.WithContext(ctx).Begin()
	if writeTx.Error != nil {
		return &PersistenceError{Op: "begin", Store: "write", Err: writeTx.Error}
	}
	readTx := s.read.WithContext(ctx).Begin()
	if readTx.Error != nil {
		writeTx.Rollback()
		return &PersistenceError{Op: "begin", Store: "read", Err: readTx.Error}
	}

	sess := &Session{svc: s, writeTx: writeTx, readTx: readTx}

	if err := fn(sess); err != nil {
		writeTx.Rollback()
		readTx.Rollback()
		return err
	}

	if err := writeTx.Commit().Error; err != nil {
		readTx.Rollback()
		return &PersistenceError{Op: "commit", Store: "write", Err: err}
	}
	if err := readTx.Commit().Error; err != nil {
		s.log.Error("read mirror diverged from committed writer state", zap.Error(err))
		if s.reconciler != nil {
			if repairErr := s.reconciler.Repair(ctx, sess.touched); repairErr != nil {
				s.log.Error("mirror repair failed", zap.Error(repairErr))
			}
		}
		return &PersistenceError{Op: "commit", Store: "read", Err: err}
	}

	if len(sess.pending) > 0 {
		if err := s.events.Append(ctx, eventdomain.StreamRegistry, eventdomain.AnyVersion, sess.pending); err != nil {
			s.log.Error("failed to append audit events for committed mutation", zap.Error(err))
			return err
		}
		s.metrics.RecordEventsAppended(len(sess.pending))
	}
	return nil
}

// Create persists the entities in order to both stores and records one CREATE
// event per entity.
func (s *Service) Create(ctx context.Context, entities ...Entity) error {
	return s.Transaction(ctx, func(sess *Session) error {
		return sess.Create(entities...)
	})
}

// Update applies the patch (keyed by column name) to the entity in both
// stores, recording the pre-mutation values of only the patched keys.
func (s *Service) Update(ctx context.Context, entity Entity, patch map[string]any) error {
	return s.Transaction(ctx, func(sess *Session) error {
		return sess.Update(entity, patch)
	})
}

// Delete tombstones the entities in both stores. Rows are never physically
// removed.
func (s *Service) Delete(ctx context.Context, entities ...Entity) error {
	return s.Transaction(ctx, func(sess *Session) error {
		return sess.Delete(entities...)
	})
}

func (sess *Session) Create(entities ...Entity) error {
	for _, entity := range entities {
		if err := sess.writeTx.Create(entity).Error; err != nil {
			return &PersistenceError{Op: "create", Store: "write", Err: err}
		}
		if err := sess.readTx.Create(entity).Error; err != nil {
			return &PersistenceError{Op: "create", Store: "read", Err: err}
		}
		sess.touched = append(sess.touched, entity)
		sess.pending = append(sess.pending, eventdomain.NewEvent{
			EntityID:   int64(entity.GetID()),
			EntityName: entity.EntityName(),
			EventType:  eventdomain.EventTypeCreate,
		})
	}
	return nil
}

func (sess *Session) Update(entity Entity, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	columns := make([]string, 0, len(patch))
	for column := range patch {
		columns = append(columns, column)
	}

	before := map[string]any{}
	if err := sess.writeTx.
		Model(entity).
		Select(columns).
		Where("id = ?", int64(entity.GetID())).
		Take(&before).Error; err != nil {
		return &PersistenceError{Op: "update", Store: "write", Err: err}
	}

	if err := sess.writeTx.Model(entity).Where("id = ?", int64(entity.GetID())).Updates(patch).Error; err != nil {
		return &PersistenceError{Op: "update", Store: "write", Err: err}
	}
	if err := sess.readTx.Model(entity).Where("id = ?", int64(entity.GetID())).Updates(patch).Error; err != nil {
		return &PersistenceError{Op: "update", Store: "read", Err: err}
	}

	sess.touched = append(sess.touched, entity)
	sess.pending = append(sess.pending, eventdomain.NewEvent{
		EntityID:         int64(entity.GetID()),
		EntityName:       entity.EntityName(),
		EventType:        eventdomain.EventTypeUpdate,
		AttributesBefore: before,
		AttributesAfter:  patch,
	})
	return nil
}

func (sess *Session) Delete(entities ...Entity) error {
	for _, entity := range entities {
		entity.MarkDeleted()
		if err := sess.writeTx.Save(entity).Error; err != nil {
			return &PersistenceError{Op: "delete", Store: "write", Err: err}
		}
		if err := sess.readTx.Save(entity).Error; err != nil {
			return &PersistenceError{Op: "delete", Store: "read", Err: err}
		}
		sess.touched = append(sess.touched, entity)
		sess.pending = append(sess.pending, eventdomain.NewEvent{
			EntityID:   int64(entity.GetID()),
			EntityName: entity.EntityName(),
			EventType:  eventdomain.EventTypeDelete,
		})
	}
	return nil
}
