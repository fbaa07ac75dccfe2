package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// TimetableRepository manages persistence for generated timetables and their
// slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ReplaceForSection atomically swaps the section's timetable. Any previous
// timetable and its slots are deleted, then the new timetable and every slot
// are inserted in the same transaction. Either all rows land or none do.
func (r *TimetableRepository) ReplaceForSection(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace timetable: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_slots WHERE timetable_id IN (SELECT id FROM timetables WHERE section_id = $1)`, timetable.SectionID); err != nil {
		return fmt.Errorf("delete previous slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetables WHERE section_id = $1`, timetable.SectionID); err != nil {
		return fmt.Errorf("delete previous timetable: %w", err)
	}

	const insertTimetable = `INSERT INTO timetables (id, name, section_id, start_time, end_time, period_duration, break_duration, lunch_start, lunch_duration, working_days, conflicts, created_at, updated_at)
		VALUES (:id, :name, :section_id, :start_time, :end_time, :period_duration, :break_duration, :lunch_start, :lunch_duration, :working_days, :conflicts, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertTimetable, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	const insertSlot = `INSERT INTO timetable_slots (id, timetable_id, course_id, day, slot_index, start_time, end_time, is_break, break_type, created_at)
		VALUES (:id, :timetable_id, :course_id, :day, :slot_index, :start_time, :end_time, :is_break, :break_type, :created_at)`
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.TimetableID = timetable.ID
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertSlot, slot); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace timetable: %w", err)
	}
	return nil
}

// FindByID fetches a timetable by ID.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, name, section_id, start_time, end_time, period_duration, break_duration, lunch_start, lunch_duration, working_days, conflicts, created_at, updated_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindBySection fetches the current timetable of a section.
func (r *TimetableRepository) FindBySection(ctx context.Context, sectionID string) (*models.Timetable, error) {
	const query = `SELECT id, name, section_id, start_time, end_time, period_duration, break_duration, lunch_start, lunch_duration, working_days, conflicts, created_at, updated_at FROM timetables WHERE section_id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, sectionID); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListSlots returns every slot of a timetable ordered by day and start time.
func (r *TimetableRepository) ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, timetable_id, course_id, day, slot_index, start_time, end_time, is_break, break_type, created_at FROM timetable_slots WHERE timetable_id = $1 ORDER BY day ASC, start_time ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// DeleteBySection removes a section's timetable and slots.
func (r *TimetableRepository) DeleteBySection(ctx context.Context, sectionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete timetable: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_slots WHERE timetable_id IN (SELECT id FROM timetables WHERE section_id = $1)`, sectionID); err != nil {
		return fmt.Errorf("delete timetable slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetables WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete timetable: %w", err)
	}
	return nil
}
