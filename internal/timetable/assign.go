package timetable

import (
	"fmt"
	"math/rand"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// Conflict types reported by the assigner and the auditor.
const (
	ConflictUnmet   = "UNMET_REQUIREMENT"
	ConflictTeacher = "TEACHER_DOUBLE_BOOKING"
	ConflictRoom    = "ROOM_DOUBLE_BOOKING"
)

// ConflictRecord describes either a requirement that could not be placed or a
// double booking detected after the fact. Conflicts are data, not errors: the
// engine always returns its best-effort placement alongside them.
type ConflictRecord struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Day       string `json:"day,omitempty"`
	TimeRange string `json:"time_range,omitempty"`
	CourseID  string `json:"course_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`
	RoomID    string `json:"room_id,omitempty"`
}

// Placement binds one requirement to the grid cell it was assigned.
type Placement struct {
	Slot   Slot
	Course *models.CourseDetail
}

// Assigner places requirements into free grid cells using randomized
// first-fit. The shuffle spreads load across days and slots; correctness does
// not depend on shuffle order.
type Assigner struct {
	grid        *Grid
	rng         *rand.Rand
	sectionName string
	teachers    *TeacherAvailability
	rooms       *RoomAvailability
}

// NewAssigner builds an assigner with fresh availability state.
func NewAssigner(grid *Grid, rng *rand.Rand, sectionName string) *Assigner {
	return &Assigner{
		grid:        grid,
		rng:         rng,
		sectionName: sectionName,
		teachers:    NewTeacherAvailability(),
		rooms:       NewRoomAvailability(),
	}
}

// Assign walks the shuffled requirement multiset and commits each request to
// the first free cell satisfying all constraints: the cell is unoccupied, the
// teacher is free there and under its daily cap, and the room (when the
// course has one) is free. Requests that fit nowhere are returned as unmet
// conflicts; a single unplaceable requirement never aborts the run.
func (a *Assigner) Assign(requirements []Requirement) ([]Placement, []ConflictRecord) {
	shuffled := make([]Requirement, len(requirements))
	copy(shuffled, requirements)
	a.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	occupied := make(map[cellRef]bool)
	placements := make([]Placement, 0, len(shuffled))
	var conflicts []ConflictRecord

	for _, req := range shuffled {
		slot, ok := a.findCell(req, occupied)
		if !ok {
			conflicts = append(conflicts, ConflictRecord{
				Type:      ConflictUnmet,
				Message:   fmt.Sprintf("could not assign %s for %s", req.Course.Subject.Name, a.sectionName),
				CourseID:  req.Course.ID,
				SubjectID: req.Course.Subject.ID,
				TeacherID: req.Course.Teacher.ID,
			})
			continue
		}

		occupied[cellRef{Day: slot.Day, Index: slot.Index}] = true
		a.teachers.Reserve(req.Course.Teacher.ID, slot.Day, slot.Index)
		if req.Course.Room != nil {
			a.rooms.Reserve(req.Course.Room.ID, slot.Day, slot.Index)
		}
		placements = append(placements, Placement{Slot: slot, Course: req.Course})
	}
	return placements, conflicts
}

func (a *Assigner) findCell(req Requirement, occupied map[cellRef]bool) (Slot, bool) {
	days := make([]string, len(a.grid.Days))
	copy(days, a.grid.Days)
	a.rng.Shuffle(len(days), func(i, j int) {
		days[i], days[j] = days[j], days[i]
	})

	for _, day := range days {
		slots := make([]Slot, len(a.grid.PeriodSlots(day)))
		copy(slots, a.grid.PeriodSlots(day))
		a.rng.Shuffle(len(slots), func(i, j int) {
			slots[i], slots[j] = slots[j], slots[i]
		})

		for _, slot := range slots {
			if occupied[cellRef{Day: day, Index: slot.Index}] {
				continue
			}
			if !a.teachers.CanTeach(req.Course.Teacher, day, slot.Index) {
				continue
			}
			if req.Course.Room != nil && !a.rooms.IsFree(req.Course.Room.ID, day, slot.Index) {
				continue
			}
			return slot, true
		}
	}
	return Slot{}, false
}
