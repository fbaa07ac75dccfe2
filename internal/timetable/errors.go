package timetable

import "fmt"

// ConfigurationError reports an invalid time window or duration in the
// generation config. It is never retried; the caller surfaces it directly.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid timetable configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid timetable configuration: %s", e.Reason)
}

// NoCoursesError signals that the section has nothing to schedule.
type NoCoursesError struct {
	SectionID string
}

// Error implements the error interface.
func (e *NoCoursesError) Error() string {
	return fmt.Sprintf("no courses to schedule for section %s", e.SectionID)
}
