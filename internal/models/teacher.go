package models

import "time"

// Teacher represents an instructor record with workload limits.
type Teacher struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	Department      *string   `db:"department" json:"department,omitempty"`
	MaxHoursPerDay  int       `db:"max_hours_per_day" json:"max_hours_per_day"`
	MaxHoursPerWeek int       `db:"max_hours_per_week" json:"max_hours_per_week"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
