package timetable

import "github.com/Sai69186/ai-time-table-generator/internal/models"

// Requirement is one unit of weekly placement demand, derived from a course's
// subject HoursPerWeek.
type Requirement struct {
	Course *models.CourseDetail
}

// ExpandRequirements turns each course into HoursPerWeek individual placement
// requests. Courses with zero or negative weekly hours contribute nothing.
func ExpandRequirements(courses []models.CourseDetail) []Requirement {
	var requirements []Requirement
	for i := range courses {
		hours := courses[i].Subject.HoursPerWeek
		for h := 0; h < hours; h++ {
			requirements = append(requirements, Requirement{Course: &courses[i]})
		}
	}
	return requirements
}
