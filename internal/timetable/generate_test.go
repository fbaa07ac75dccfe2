package timetable

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func testSection() models.Section {
	return models.Section{ID: "section-1", Name: "CS-A", Year: 2, Semester: 3, Strength: 60, BranchID: "branch-1"}
}

func TestGenerateProducesCompleteResult(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(5)), nil)
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	courses := []models.CourseDetail{
		newCourseDetail("a", 4, teacher, nil),
		newCourseDetail("b", 3, teacher, nil),
	}

	result, err := gen.Generate(testSection(), courses, referenceConfig())
	require.NoError(t, err)

	assert.Equal(t, "section-1", result.Timetable.SectionID)
	assert.Equal(t, "CS-A Year-2 Sem-3", result.Timetable.Name)
	assert.Equal(t, "Monday,Tuesday,Wednesday,Thursday,Friday", result.Timetable.WorkingDays)
	assert.Equal(t, 7, result.TotalRequirements)
	assert.Equal(t, 7, result.PlacedCount)
	assert.Empty(t, result.Conflicts)

	// 7 class slots plus one lunch slot per working day.
	assert.Len(t, result.Slots, 12)
	assert.Len(t, result.View.Days, 5)
}

func TestGenerateNoCourses(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)), nil)
	_, err := gen.Generate(testSection(), nil, referenceConfig())
	require.Error(t, err)
	var noCourses *NoCoursesError
	assert.ErrorAs(t, err, &noCourses)
}

func TestGenerateInvalidConfigFailsBeforeAssignment(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)), nil)
	cfg := referenceConfig()
	cfg.PeriodDuration = -10
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	_, err := gen.Generate(testSection(), []models.CourseDetail{newCourseDetail("a", 2, teacher, nil)}, cfg)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGenerateCleanRunAuditsClean(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		gen := NewGenerator(rand.New(rand.NewSource(seed)), nil)
		teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 3}
		courses := []models.CourseDetail{newCourseDetail("a", 6, teacher, nil)}

		result, err := gen.Generate(testSection(), courses, referenceConfig())
		require.NoError(t, err)
		if len(result.Conflicts) == 0 {
			assert.Empty(t, AuditGrid(result.Placements), "seed %d", seed)
		}
	}
}

func TestAssembleRoundTrip(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(23)), nil)
	t1 := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	t2 := models.Teacher{ID: "t2", Name: "Grace", EmployeeID: "EMP2", MaxHoursPerDay: 6}
	room := &models.Room{ID: "r1", Number: "101", RoomType: models.RoomTypeClassroom}
	courses := []models.CourseDetail{
		newCourseDetail("a", 4, t1, room),
		newCourseDetail("b", 4, t2, nil),
	}

	result, err := gen.Generate(testSection(), courses, referenceConfig())
	require.NoError(t, err)

	// Re-derive the (day, time range) -> course lookup from the view and
	// compare it against the assigner's placements: the join must lose
	// nothing.
	fromView := make(map[string]string)
	for day, slots := range result.View.Days {
		for _, sv := range slots {
			if sv.IsBreak {
				continue
			}
			fromView[fmt.Sprintf("%s %s-%s", day, sv.StartTime, sv.EndTime)] = sv.CourseID
		}
	}
	require.Len(t, fromView, len(result.Placements))
	for _, p := range result.Placements {
		key := fmt.Sprintf("%s %s", p.Slot.Day, p.Slot.TimeRange())
		assert.Equal(t, p.Course.ID, fromView[key])
	}
}

func TestAssembleSortsAndJoinsIdentity(t *testing.T) {
	grid := mustGrid(t)
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1"}
	course := newCourseDetail("a", 1, teacher, nil)
	late := grid.PeriodSlots("Monday")[5]
	early := grid.PeriodSlots("Monday")[0]

	view := Assemble(testSection(), grid, []Placement{
		{Slot: late, Course: &course},
		{Slot: early, Course: &course},
	}, nil, 1, 2)

	monday := view.Days["Monday"]
	require.Len(t, monday, 3) // two classes plus lunch
	assert.Equal(t, "09:00", monday[0].StartTime)
	assert.True(t, monday[1].IsBreak)
	assert.Equal(t, "lunch", monday[1].BreakType)
	assert.Equal(t, "15:15", monday[2].StartTime)

	assert.Equal(t, "Subject a", monday[0].SubjectName)
	assert.Equal(t, "SUBa", monday[0].SubjectCode)
	assert.Equal(t, "Ada", monday[0].TeacherName)
	assert.Equal(t, "EMP1", monday[0].TeacherEmployeeID)
	assert.Equal(t, "TBA", monday[0].RoomNumber)
	assert.Equal(t, 2, view.TotalRequirements)
	assert.Equal(t, 2, view.PlacedCount)
}
