package timetable

import "github.com/Sai69186/ai-time-table-generator/internal/models"

type cellRef struct {
	Day   string
	Index int
}

// TeacherAvailability tracks per-generation teacher busy state and daily
// placement counts. It is constructed fresh for every generation call and is
// never shared across concurrent generations.
type TeacherAvailability struct {
	busy   map[string]map[cellRef]bool
	daily  map[string]map[string]int
	weekly map[string]int
}

// NewTeacherAvailability builds empty tracking state.
func NewTeacherAvailability() *TeacherAvailability {
	return &TeacherAvailability{
		busy:   make(map[string]map[cellRef]bool),
		daily:  make(map[string]map[string]int),
		weekly: make(map[string]int),
	}
}

// CanTeach reports whether the teacher is free at the cell and under both the
// daily and weekly hour caps. Caps of zero are treated as unlimited.
func (a *TeacherAvailability) CanTeach(teacher models.Teacher, day string, index int) bool {
	if a.busy[teacher.ID][cellRef{Day: day, Index: index}] {
		return false
	}
	if teacher.MaxHoursPerDay > 0 && a.daily[teacher.ID][day] >= teacher.MaxHoursPerDay {
		return false
	}
	if teacher.MaxHoursPerWeek > 0 && a.weekly[teacher.ID] >= teacher.MaxHoursPerWeek {
		return false
	}
	return true
}

// Reserve marks the cell as occupied by the teacher.
func (a *TeacherAvailability) Reserve(teacherID, day string, index int) {
	if a.busy[teacherID] == nil {
		a.busy[teacherID] = make(map[cellRef]bool)
	}
	a.busy[teacherID][cellRef{Day: day, Index: index}] = true
	if a.daily[teacherID] == nil {
		a.daily[teacherID] = make(map[string]int)
	}
	a.daily[teacherID][day]++
	a.weekly[teacherID]++
}

// DailyCount returns the number of placements the teacher holds on a day.
func (a *TeacherAvailability) DailyCount(teacherID, day string) int {
	return a.daily[teacherID][day]
}

// RoomAvailability tracks per-generation room busy state.
type RoomAvailability struct {
	busy map[string]map[cellRef]bool
}

// NewRoomAvailability builds empty tracking state.
func NewRoomAvailability() *RoomAvailability {
	return &RoomAvailability{busy: make(map[string]map[cellRef]bool)}
}

// IsFree reports whether the room is unoccupied at the cell.
func (a *RoomAvailability) IsFree(roomID, day string, index int) bool {
	return !a.busy[roomID][cellRef{Day: day, Index: index}]
}

// Reserve marks the cell as occupied by the room.
func (a *RoomAvailability) Reserve(roomID, day string, index int) {
	if a.busy[roomID] == nil {
		a.busy[roomID] = make(map[cellRef]bool)
	}
	a.busy[roomID][cellRef{Day: day, Index: index}] = true
}
