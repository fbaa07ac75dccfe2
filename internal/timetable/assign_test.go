package timetable

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func newCourseDetail(id string, hours int, teacher models.Teacher, room *models.Room) models.CourseDetail {
	return models.CourseDetail{
		Course: models.Course{
			ID:        "course-" + id,
			SectionID: "section-1",
			SubjectID: "subject-" + id,
			TeacherID: teacher.ID,
		},
		Subject: models.Subject{
			ID:           "subject-" + id,
			Name:         "Subject " + id,
			Code:         "SUB" + id,
			SubjectType:  models.SubjectTypeTheory,
			HoursPerWeek: hours,
		},
		Teacher: teacher,
		Room:    room,
	}
}

func mustGrid(t *testing.T) *Grid {
	t.Helper()
	grid, err := BuildGrid(referenceConfig())
	require.NoError(t, err)
	return grid
}

func TestAssignSpreadsAcrossDaysUnderDailyCap(t *testing.T) {
	grid := mustGrid(t)
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 1}
	courses := []models.CourseDetail{newCourseDetail("a", 3, teacher, nil)}

	assigner := NewAssigner(grid, rand.New(rand.NewSource(7)), "CS-A")
	placements, conflicts := assigner.Assign(ExpandRequirements(courses))

	require.Len(t, placements, 3)
	assert.Empty(t, conflicts)

	days := make(map[string]int)
	for _, p := range placements {
		days[p.Slot.Day]++
	}
	for day, count := range days {
		assert.Equal(t, 1, count, "day %s exceeds the daily cap", day)
	}
	assert.Len(t, days, 3, "three hours must land on three distinct days")
}

func TestAssignReportsUnmetWhenCapacityExhausted(t *testing.T) {
	grid := mustGrid(t)
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 1}
	courses := []models.CourseDetail{newCourseDetail("a", 10, teacher, nil)}

	assigner := NewAssigner(grid, rand.New(rand.NewSource(3)), "CS-A")
	placements, conflicts := assigner.Assign(ExpandRequirements(courses))

	// One hour per day across five days is all this teacher can hold.
	assert.Len(t, placements, 5)
	require.Len(t, conflicts, 5)
	for _, c := range conflicts {
		assert.Equal(t, ConflictUnmet, c.Type)
		assert.Contains(t, c.Message, "Subject a")
		assert.Contains(t, c.Message, "CS-A")
	}
}

func TestAssignNeverDoubleBooksSharedTeacher(t *testing.T) {
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 1}
	courses := []models.CourseDetail{
		newCourseDetail("a", 6, teacher, nil),
		newCourseDetail("b", 6, teacher, nil),
	}

	for seed := int64(1); seed <= 10; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			grid := mustGrid(t)
			assigner := NewAssigner(grid, rand.New(rand.NewSource(seed)), "CS-A")
			placements, conflicts := assigner.Assign(ExpandRequirements(courses))

			assert.Empty(t, AuditGrid(placements))
			assert.Equal(t, 12, len(placements)+unmetCount(conflicts))
		})
	}
}

func TestAssignConservesRequirements(t *testing.T) {
	grid := mustGrid(t)
	t1 := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	t2 := models.Teacher{ID: "t2", Name: "Grace", EmployeeID: "EMP2", MaxHoursPerDay: 6}
	courses := []models.CourseDetail{
		newCourseDetail("a", 4, t1, nil),
		newCourseDetail("b", 5, t2, nil),
		newCourseDetail("c", 0, t1, nil),
	}

	assigner := NewAssigner(grid, rand.New(rand.NewSource(11)), "CS-A")
	placements, conflicts := assigner.Assign(ExpandRequirements(courses))

	assert.Equal(t, 9, len(placements)+unmetCount(conflicts))

	occupied := make(map[string]bool)
	for _, p := range placements {
		key := fmt.Sprintf("%s#%d", p.Slot.Day, p.Slot.Index)
		assert.False(t, occupied[key], "cell %s placed twice", key)
		occupied[key] = true
	}
}

func TestAssignRespectsRoomBusy(t *testing.T) {
	grid := mustGrid(t)
	room := &models.Room{ID: "r1", Number: "101", Capacity: 60, RoomType: models.RoomTypeClassroom}
	t1 := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	t2 := models.Teacher{ID: "t2", Name: "Grace", EmployeeID: "EMP2", MaxHoursPerDay: 6}
	courses := []models.CourseDetail{
		newCourseDetail("a", 5, t1, room),
		newCourseDetail("b", 5, t2, room),
	}

	assigner := NewAssigner(grid, rand.New(rand.NewSource(19)), "CS-A")
	placements, _ := assigner.Assign(ExpandRequirements(courses))

	seen := make(map[string]bool)
	for _, p := range placements {
		key := fmt.Sprintf("%s#%d", p.Slot.Day, p.Slot.Index)
		assert.False(t, seen[key], "room double-booked at %s", key)
		seen[key] = true
	}
	assert.Empty(t, AuditGrid(placements))
}

func TestAssignSameSeedIsDeterministic(t *testing.T) {
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	courses := []models.CourseDetail{
		newCourseDetail("a", 4, teacher, nil),
		newCourseDetail("b", 3, teacher, nil),
	}

	run := func() []Placement {
		grid := mustGrid(t)
		assigner := NewAssigner(grid, rand.New(rand.NewSource(42)), "CS-A")
		placements, _ := assigner.Assign(ExpandRequirements(courses))
		return placements
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Slot, second[i].Slot)
		assert.Equal(t, first[i].Course.ID, second[i].Course.ID)
	}
}

func unmetCount(conflicts []ConflictRecord) int {
	count := 0
	for _, c := range conflicts {
		if c.Type == ConflictUnmet {
			count++
		}
	}
	return count
}
