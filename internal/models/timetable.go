package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// BreakType labels the kind of break occupying a grid cell.
type BreakType string

const (
	BreakTypeShort BreakType = "short"
	BreakTypeLunch BreakType = "lunch"
)

// Timetable is the generated weekly artifact for one section. Regeneration
// replaces the previous timetable together with all of its slots.
type Timetable struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	SectionID      string         `db:"section_id" json:"section_id"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time" json:"end_time"`
	PeriodDuration int            `db:"period_duration" json:"period_duration"`
	BreakDuration  int            `db:"break_duration" json:"break_duration"`
	LunchStart     string         `db:"lunch_start" json:"lunch_start"`
	LunchDuration  int            `db:"lunch_duration" json:"lunch_duration"`
	WorkingDays    string         `db:"working_days" json:"working_days"`
	Conflicts      types.JSONText `db:"conflicts" json:"conflicts,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// WorkingDayList splits the stored CSV day list.
func (t Timetable) WorkingDayList() []string {
	if t.WorkingDays == "" {
		return nil
	}
	days := make([]string, 0, 6)
	start := 0
	for i := 0; i <= len(t.WorkingDays); i++ {
		if i == len(t.WorkingDays) || t.WorkingDays[i] == ',' {
			if i > start {
				days = append(days, t.WorkingDays[start:i])
			}
			start = i + 1
		}
	}
	return days
}

// TimetableSlot is one cell of the weekly grid. Break slots carry no course;
// class slots reference the course occupying them.
type TimetableSlot struct {
	ID          string     `db:"id" json:"id"`
	TimetableID string     `db:"timetable_id" json:"timetable_id"`
	CourseID    *string    `db:"course_id" json:"course_id,omitempty"`
	Day         string     `db:"day" json:"day"`
	SlotIndex   int        `db:"slot_index" json:"slot_index"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	IsBreak     bool       `db:"is_break" json:"is_break"`
	BreakType   *BreakType `db:"break_type" json:"break_type,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
