package dto

import (
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
)

// TimetableConfigRequest carries the grid configuration for a generation
// call. Empty fields fall back to the service defaults.
type TimetableConfigRequest struct {
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	PeriodDuration int      `json:"period_duration" validate:"omitempty,gt=0"`
	BreakDuration  int      `json:"break_duration" validate:"omitempty,gt=0"`
	LunchStart     string   `json:"lunch_start"`
	LunchDuration  int      `json:"lunch_duration" validate:"omitempty,gt=0"`
	WorkingDays    []string `json:"working_days"`
}

// GenerateTimetableRequest asks for a fresh timetable for one section.
// AllowPartial keeps a best-effort schedule even when some requirements stay
// unplaced; the default discards the result on any conflict.
type GenerateTimetableRequest struct {
	SectionID    string                 `json:"section_id" validate:"required"`
	Config       TimetableConfigRequest `json:"config"`
	AllowPartial bool                   `json:"allow_partial"`
}

// GenerateTimetableResponse reports the outcome of one generation call,
// including every conflict so the caller can render "N of M placed".
type GenerateTimetableResponse struct {
	TimetableID       string                     `json:"timetable_id,omitempty"`
	Saved             bool                       `json:"saved"`
	View              *timetable.View            `json:"view,omitempty"`
	Conflicts         []timetable.ConflictRecord `json:"conflicts"`
	TotalCourses      int                        `json:"total_courses"`
	TotalRequirements int                        `json:"total_requirements"`
	PlacedCount       int                        `json:"placed_count"`
}

// ConflictReport lists the conflicts recorded for a stored timetable.
type ConflictReport struct {
	TimetableID    string                     `json:"timetable_id"`
	Conflicts      []timetable.ConflictRecord `json:"conflicts"`
	TotalConflicts int                        `json:"total_conflicts"`
	Status         string                     `json:"status"`
}

// RegenerateBranchRequest enqueues regeneration for every section of a
// branch. Each section is generated independently with its own state.
type RegenerateBranchRequest struct {
	Config       TimetableConfigRequest `json:"config"`
	AllowPartial bool                   `json:"allow_partial"`
}

// RegenerateBranchResponse reports how many sections were enqueued.
type RegenerateBranchResponse struct {
	BranchID string `json:"branch_id"`
	Enqueued int    `json:"enqueued"`
}
