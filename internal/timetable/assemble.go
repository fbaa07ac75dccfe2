package timetable

import (
	"sort"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// SlotView is one rendered cell of the day-keyed timetable: either a break
// view or a class view joined with subject, teacher and room identity.
type SlotView struct {
	SlotIndex         int    `json:"slot_index,omitempty"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	IsBreak           bool   `json:"is_break"`
	BreakType         string `json:"break_type,omitempty"`
	CourseID          string `json:"course_id,omitempty"`
	SubjectName       string `json:"subject_name,omitempty"`
	SubjectCode       string `json:"subject_code,omitempty"`
	SubjectType       string `json:"subject_type,omitempty"`
	TeacherName       string `json:"teacher_name,omitempty"`
	TeacherEmployeeID string `json:"teacher_employee_id,omitempty"`
	RoomNumber        string `json:"room_number,omitempty"`
	Building          string `json:"building,omitempty"`
}

// View is the day-keyed structure returned to callers. It carries the full
// conflict list and the requirement totals so callers can render
// "N of M placed" feedback.
type View struct {
	SectionID         string                `json:"section_id"`
	SectionName       string                `json:"section_name"`
	WorkingDays       []string              `json:"working_days"`
	Days              map[string][]SlotView `json:"days"`
	Conflicts         []ConflictRecord      `json:"conflicts"`
	TotalRequirements int                   `json:"total_requirements"`
	PlacedCount       int                   `json:"placed_count"`
	TotalCourses      int                   `json:"total_courses"`
}

// Assemble joins placed slots with course identity data and the grid's break
// slots into the day-keyed view. Slots within a day are sorted by start time.
func Assemble(section models.Section, grid *Grid, placements []Placement, conflicts []ConflictRecord, totalCourses, totalRequirements int) *View {
	view := &View{
		SectionID:         section.ID,
		SectionName:       section.Name,
		WorkingDays:       grid.Days,
		Days:              make(map[string][]SlotView, len(grid.Days)),
		Conflicts:         conflicts,
		TotalRequirements: totalRequirements,
		PlacedCount:       len(placements),
		TotalCourses:      totalCourses,
	}
	for _, day := range grid.Days {
		view.Days[day] = nil
	}

	for _, p := range placements {
		sv := SlotView{
			SlotIndex:         p.Slot.Index,
			StartTime:         Clock(p.Slot.Start),
			EndTime:           Clock(p.Slot.End),
			CourseID:          p.Course.ID,
			SubjectName:       p.Course.Subject.Name,
			SubjectCode:       p.Course.Subject.Code,
			SubjectType:       string(p.Course.Subject.SubjectType),
			TeacherName:       p.Course.Teacher.Name,
			TeacherEmployeeID: p.Course.Teacher.EmployeeID,
		}
		if p.Course.Room != nil {
			sv.RoomNumber = p.Course.Room.Number
			if p.Course.Room.Building != nil {
				sv.Building = *p.Course.Room.Building
			}
		} else {
			sv.RoomNumber = "TBA"
			sv.Building = "TBA"
		}
		view.Days[p.Slot.Day] = append(view.Days[p.Slot.Day], sv)
	}

	for _, b := range grid.BreakSlots() {
		view.Days[b.Day] = append(view.Days[b.Day], SlotView{
			StartTime: Clock(b.Start),
			EndTime:   Clock(b.End),
			IsBreak:   true,
			BreakType: string(b.BreakType),
		})
	}

	for day := range view.Days {
		slots := view.Days[day]
		sort.Slice(slots, func(i, j int) bool {
			return slots[i].StartTime < slots[j].StartTime
		})
		view.Days[day] = slots
	}
	return view
}
