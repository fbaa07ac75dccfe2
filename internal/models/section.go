package models

import "time"

// Section represents a cohort of students scheduled as one unit.
type Section struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Year      int       `db:"year" json:"year"`
	Semester  int       `db:"semester" json:"semester"`
	Strength  int       `db:"strength" json:"strength"`
	BranchID  string    `db:"branch_id" json:"branch_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDetail extends Section with the owning branch name for responses.
type SectionDetail struct {
	Section
	BranchName string `db:"branch_name" json:"branch_name"`
}

// SectionFilter captures filtering options for listing sections.
type SectionFilter struct {
	BranchID  string
	Year      *int
	Semester  *int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
