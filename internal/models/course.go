package models

import "time"

// Course links a section, a subject and a teacher, with an optional room.
// It is the unit actually placed into the weekly grid.
type Course struct {
	ID        string    `db:"id" json:"id"`
	SectionID string    `db:"section_id" json:"section_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail is a course joined with its subject, teacher and optional room.
// The generation engine consumes courses in this shape so it never touches
// storage itself.
type CourseDetail struct {
	Course
	Subject Subject `json:"subject"`
	Teacher Teacher `json:"teacher"`
	Room    *Room   `json:"room,omitempty"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	SectionID string
	SubjectID string
	TeacherID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
