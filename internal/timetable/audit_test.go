package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func TestAuditGridDetectsTeacherDoubleBooking(t *testing.T) {
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	courseA := newCourseDetail("a", 1, teacher, nil)
	courseB := newCourseDetail("b", 1, teacher, nil)
	slot := Slot{Day: "Monday", Index: 1, Start: 540, End: 590}

	conflicts := AuditGrid([]Placement{
		{Slot: slot, Course: &courseA},
		{Slot: slot, Course: &courseB},
	})

	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictTeacher, conflicts[0].Type)
	assert.Equal(t, "Monday", conflicts[0].Day)
	assert.Equal(t, "09:00-09:50", conflicts[0].TimeRange)
	assert.Equal(t, "t1", conflicts[0].TeacherID)
}

func TestAuditGridDetectsRoomDoubleBooking(t *testing.T) {
	room := &models.Room{ID: "r1", Number: "101"}
	t1 := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	t2 := models.Teacher{ID: "t2", Name: "Grace", EmployeeID: "EMP2"}
	courseA := newCourseDetail("a", 1, t1, room)
	courseB := newCourseDetail("b", 1, t2, room)
	slot := Slot{Day: "Friday", Index: 2, Start: 600, End: 650}

	conflicts := AuditGrid([]Placement{
		{Slot: slot, Course: &courseA},
		{Slot: slot, Course: &courseB},
	})

	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoom, conflicts[0].Type)
	assert.Equal(t, "r1", conflicts[0].RoomID)
}

func TestAuditGridIgnoresMissingRooms(t *testing.T) {
	t1 := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	t2 := models.Teacher{ID: "t2", Name: "Grace", EmployeeID: "EMP2"}
	courseA := newCourseDetail("a", 1, t1, nil)
	courseB := newCourseDetail("b", 1, t2, nil)
	slot := Slot{Day: "Monday", Index: 1, Start: 540, End: 590}

	conflicts := AuditGrid([]Placement{
		{Slot: slot, Course: &courseA},
		{Slot: slot, Course: &courseB},
	})
	assert.Empty(t, conflicts)
}

func TestAuditGridCleanOnDistinctSlots(t *testing.T) {
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	course := newCourseDetail("a", 2, teacher, nil)

	conflicts := AuditGrid([]Placement{
		{Slot: Slot{Day: "Monday", Index: 1, Start: 540, End: 590}, Course: &course},
		{Slot: Slot{Day: "Monday", Index: 2, Start: 600, End: 650}, Course: &course},
	})
	assert.Empty(t, conflicts)
}
