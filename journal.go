package ticktock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome classifies how a firing left its subscription.
type Outcome string

const (
	// OutcomeStopped means the closure returned Stop and was removed.
	OutcomeStopped Outcome = "stopped"
	// OutcomeRepeated means the task re-armed with its unchanged interval.
	OutcomeRepeated Outcome = "repeated"
	// OutcomeRescheduled means the task re-armed with a new interval.
	OutcomeRescheduled Outcome = "rescheduled"
	// OutcomeCancelled means the subscription was removed while the closure ran.
	OutcomeCancelled Outcome = "cancelled"
)

// FiringRecord is one completed invocation of a scheduled closure.
type FiringRecord struct {
	ID         string    `gorm:"primaryKey"`
	Subscriber uint64    `gorm:"index"`
	FiredAt    time.Time `gorm:"index"`
	Took       time.Duration
	Outcome    Outcome
	NextDelay  time.Duration
}

// Journal persists firing history for observability. It is an audit log of
// past firings only; it is never read back to restore schedules.
type Journal interface {
	// Migrate creates the necessary tables.
	Migrate(ctx context.Context) error

	// RecordFiring appends one firing record.
	RecordFiring(ctx context.Context, rec *FiringRecord) error

	// Firings returns the most recent records for a subscriber, newest first.
	Firings(ctx context.Context, subscriber uint64, limit int) ([]FiringRecord, error)

	// PurgeBefore deletes records fired before cutoff, returning the count.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormJournal implements Journal using GORM.
type GormJournal struct {
	db *gorm.DB
}

// NewGormJournal creates a GORM-backed journal.
func NewGormJournal(db *gorm.DB) *GormJournal {
	return &GormJournal{db: db}
}

// Migrate creates the firing_records table.
func (j *GormJournal) Migrate(ctx context.Context) error {
	return j.db.WithContext(ctx).AutoMigrate(&FiringRecord{})
}

// RecordFiring appends one firing record, assigning an id if missing.
func (j *GormJournal) RecordFiring(ctx context.Context, rec *FiringRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	return j.db.WithContext(ctx).Create(rec).Error
}

// Firings returns the most recent records for a subscriber, newest first.
func (j *GormJournal) Firings(ctx context.Context, subscriber uint64, limit int) ([]FiringRecord, error) {
	var recs []FiringRecord
	err := j.db.WithContext(ctx).
		Where("subscriber = ?", subscriber).
		Order("fired_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// PurgeBefore deletes records fired before cutoff.
func (j *GormJournal) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := j.db.WithContext(ctx).
		Where("fired_at < ?", cutoff).
		Delete(&FiringRecord{})
	return result.RowsAffected, result.Error
}
