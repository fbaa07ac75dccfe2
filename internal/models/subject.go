package models

import "time"

// SubjectType distinguishes theory subjects from labs.
type SubjectType string

const (
	SubjectTypeTheory SubjectType = "theory"
	SubjectTypeLab    SubjectType = "lab"
)

// Subject represents an academic subject. HoursPerWeek is the authoritative
// weekly placement count for any course built from the subject.
type Subject struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Code         string      `db:"code" json:"code"`
	Credits      int         `db:"credits" json:"credits"`
	SubjectType  SubjectType `db:"subject_type" json:"subject_type"`
	HoursPerWeek int         `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	SubjectType string
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
