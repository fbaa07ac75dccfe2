package service

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sai69186/ai-time-table-generator/internal/dto"
	"github.com/Sai69186/ai-time-table-generator/internal/models"
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
	"github.com/Sai69186/ai-time-table-generator/pkg/jobs"
)

type stubTimetableRepo struct {
	replaced  *models.Timetable
	slots     []models.TimetableSlot
	stored    *models.Timetable
	storedRow []models.TimetableSlot
	deleted   string
}

func (s *stubTimetableRepo) ReplaceForSection(_ context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error {
	timetable.ID = "tt-1"
	s.replaced = timetable
	s.slots = slots
	return nil
}

func (s *stubTimetableRepo) FindByID(_ context.Context, id string) (*models.Timetable, error) {
	if s.stored == nil || s.stored.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.stored, nil
}

func (s *stubTimetableRepo) FindBySection(_ context.Context, sectionID string) (*models.Timetable, error) {
	if s.stored == nil || s.stored.SectionID != sectionID {
		return nil, sql.ErrNoRows
	}
	return s.stored, nil
}

func (s *stubTimetableRepo) ListSlots(_ context.Context, _ string) ([]models.TimetableSlot, error) {
	return s.storedRow, nil
}

func (s *stubTimetableRepo) DeleteBySection(_ context.Context, sectionID string) error {
	s.deleted = sectionID
	return nil
}

type stubSectionReader struct {
	sections map[string]*models.Section
	byBranch []models.Section
}

func (s *stubSectionReader) FindByID(_ context.Context, id string) (*models.Section, error) {
	if section, ok := s.sections[id]; ok {
		return section, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubSectionReader) ListByBranch(_ context.Context, _ string) ([]models.Section, error) {
	return s.byBranch, nil
}

type stubBranchReader struct {
	branch *models.Branch
}

func (s *stubBranchReader) FindByID(_ context.Context, id string) (*models.Branch, error) {
	if s.branch == nil || s.branch.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.branch, nil
}

type stubCourseReader struct {
	details []models.CourseDetail
}

func (s *stubCourseReader) ListDetailedBySection(_ context.Context, _ string) ([]models.CourseDetail, error) {
	return s.details, nil
}

type stubQueue struct {
	jobs []jobs.Job
}

func (s *stubQueue) Enqueue(job jobs.Job) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func defaultTestConfig() timetable.Config {
	return timetable.Config{
		StartTime:      "09:00",
		EndTime:        "16:00",
		PeriodDuration: 50,
		BreakDuration:  10,
		LunchStart:     "12:30",
		LunchDuration:  45,
		WorkingDays:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	}
}

func serviceCourseDetail(id string, hours int, teacher models.Teacher) models.CourseDetail {
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
	}
}

func newTestTimetableService(repo *stubTimetableRepo, sections *stubSectionReader, branches *stubBranchReader, courses *stubCourseReader, seed int64) *TimetableService {
	gen := timetable.NewGenerator(rand.New(rand.NewSource(seed)), zap.NewNop())
	return NewTimetableService(repo, sections, branches, courses, gen, nil, nil, nil, zap.NewNop(), defaultTestConfig())
}

func testFixtures() (*stubTimetableRepo, *stubSectionReader, *stubBranchReader, *stubCourseReader) {
	repo := &stubTimetableRepo{}
	sections := &stubSectionReader{sections: map[string]*models.Section{
		"section-1": {ID: "section-1", Name: "CS-A", Year: 2, Semester: 3, BranchID: "branch-1"},
	}}
	branches := &stubBranchReader{branch: &models.Branch{ID: "branch-1", Name: "Computer Science", Code: "CS"}}
	teacher := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 6}
	courses := &stubCourseReader{details: []models.CourseDetail{
		serviceCourseDetail("a", 4, teacher),
		serviceCourseDetail("b", 3, teacher),
	}}
	return repo, sections, branches, courses
}

func TestTimetableServiceGeneratePersistsCleanResult(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 5)

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{SectionID: "section-1"})
	require.NoError(t, err)

	assert.True(t, resp.Saved)
	assert.Equal(t, "tt-1", resp.TimetableID)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, 7, resp.PlacedCount)

	require.NotNil(t, repo.replaced)
	assert.Equal(t, "Computer Science CS-A Year-2 Sem-3", repo.replaced.Name)
	assert.JSONEq(t, "[]", string(repo.replaced.Conflicts))
	// 7 class slots plus a lunch slot per working day.
	assert.Len(t, repo.slots, 12)
}

func TestTimetableServiceGenerateDiscardsConflictedResult(t *testing.T) {
	repo, sections, branches, _ := testFixtures()
	constrained := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 1}
	courses := &stubCourseReader{details: []models.CourseDetail{serviceCourseDetail("a", 10, constrained)}}
	svc := newTestTimetableService(repo, sections, branches, courses, 3)

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{SectionID: "section-1"})
	require.NoError(t, err)

	assert.False(t, resp.Saved)
	assert.Empty(t, resp.TimetableID)
	assert.Len(t, resp.Conflicts, 5)
	assert.Equal(t, 5, resp.PlacedCount)
	assert.Nil(t, repo.replaced, "conflicted result must not reach storage")
}

func TestTimetableServiceGenerateAllowPartialPersists(t *testing.T) {
	repo, sections, branches, _ := testFixtures()
	constrained := models.Teacher{ID: "t1", Name: "Ada", EmployeeID: "EMP1", MaxHoursPerDay: 1}
	courses := &stubCourseReader{details: []models.CourseDetail{serviceCourseDetail("a", 10, constrained)}}
	svc := newTestTimetableService(repo, sections, branches, courses, 3)

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{SectionID: "section-1", AllowPartial: true})
	require.NoError(t, err)

	assert.True(t, resp.Saved)
	assert.Len(t, resp.Conflicts, 5)
	require.NotNil(t, repo.replaced)

	var stored []timetable.ConflictRecord
	require.NoError(t, repo.replaced.Conflicts.Unmarshal(&stored))
	assert.Len(t, stored, 5)
}

func TestTimetableServiceGenerateSectionNotFound(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{SectionID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section not found")
}

func TestTimetableServiceGenerateNoCourses(t *testing.T) {
	repo, sections, branches, _ := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, &stubCourseReader{}, 1)

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{SectionID: "section-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no courses")
}

func TestTimetableServiceGenerateInvalidConfig(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		SectionID: "section-1",
		Config:    dto.TimetableConfigRequest{StartTime: "18:00", EndTime: "09:00"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_time")
}

func TestTimetableServiceGetConflicts(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	repo.stored = &models.Timetable{
		ID:        "tt-9",
		SectionID: "section-1",
		Conflicts: types.JSONText(`[{"type":"UNMET_REQUIREMENT","message":"could not assign Subject a for CS-A"}]`),
	}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	report, err := svc.GetConflicts(context.Background(), "tt-9")
	require.NoError(t, err)
	assert.Equal(t, "conflicted", report.Status)
	assert.Equal(t, 1, report.TotalConflicts)
	assert.Equal(t, timetable.ConflictUnmet, report.Conflicts[0].Type)

	repo.stored.Conflicts = types.JSONText(`[]`)
	report, err = svc.GetConflicts(context.Background(), "tt-9")
	require.NoError(t, err)
	assert.Equal(t, "clean", report.Status)
}

func TestTimetableServiceGetViewFromStoredRows(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	courseID := "course-a"
	lunch := models.BreakTypeLunch
	repo.stored = &models.Timetable{
		ID:          "tt-1",
		SectionID:   "section-1",
		WorkingDays: "Monday,Tuesday",
		Conflicts:   types.JSONText(`[]`),
	}
	repo.storedRow = []models.TimetableSlot{
		{CourseID: &courseID, Day: "Monday", SlotIndex: 1, StartTime: "09:00", EndTime: "09:50"},
		{Day: "Monday", StartTime: "12:30", EndTime: "13:15", IsBreak: true, BreakType: &lunch},
	}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	view, cacheHit, err := svc.GetView(context.Background(), "section-1")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, "CS-A", view.SectionName)
	assert.Equal(t, []string{"Monday", "Tuesday"}, view.WorkingDays)
	require.Len(t, view.Days["Monday"], 2)
	assert.Equal(t, "Subject a", view.Days["Monday"][0].SubjectName)
	assert.Equal(t, "TBA", view.Days["Monday"][0].RoomNumber)
	assert.True(t, view.Days["Monday"][1].IsBreak)
	assert.Equal(t, 1, view.PlacedCount)
}

func TestTimetableServiceGetViewWithoutTimetable(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	_, _, err := svc.GetView(context.Background(), "section-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no timetable")
}

func TestTimetableServiceExportCSV(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	courseID := "course-a"
	repo.stored = &models.Timetable{
		ID:          "tt-1",
		Name:        "Computer Science CS-A Year-2 Sem-3",
		SectionID:   "section-1",
		WorkingDays: "Monday",
		Conflicts:   types.JSONText(`[]`),
	}
	repo.storedRow = []models.TimetableSlot{
		{CourseID: &courseID, Day: "Monday", SlotIndex: 1, StartTime: "09:00", EndTime: "09:50"},
	}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	data, filename, contentType, err := svc.Export(context.Background(), "tt-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable-CS-A.csv", filename)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(data), "Subject a")
	assert.Contains(t, string(data), "Monday")
}

func TestTimetableServiceExportRejectsUnknownFormat(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	repo.stored = &models.Timetable{ID: "tt-1", SectionID: "section-1", WorkingDays: "Monday", Conflicts: types.JSONText(`[]`)}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	_, _, _, err := svc.Export(context.Background(), "tt-1", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be pdf or csv")
}

func TestTimetableServiceRegenerateBranch(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	sections.byBranch = []models.Section{
		{ID: "section-1", Name: "CS-A", BranchID: "branch-1"},
		{ID: "section-2", Name: "CS-B", BranchID: "branch-1"},
	}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)
	queue := &stubQueue{}
	svc.SetQueue(queue)

	resp, err := svc.RegenerateBranch(context.Background(), "branch-1", dto.RegenerateBranchRequest{AllowPartial: true})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Enqueued)
	require.Len(t, queue.jobs, 2)
	assert.Equal(t, JobTypeRegenerateSection, queue.jobs[0].Type)

	payload, ok := queue.jobs[0].Payload.(RegenerateSectionJob)
	require.True(t, ok)
	assert.Equal(t, "section-1", payload.SectionID)
	assert.True(t, payload.AllowPartial)
}

func TestTimetableServiceHandleRegenerateJob(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 5)

	err := svc.HandleRegenerateJob(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    JobTypeRegenerateSection,
		Payload: RegenerateSectionJob{SectionID: "section-1", AllowPartial: true},
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.replaced)
}

func TestTimetableServiceRegenerateWithoutQueue(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	_, err := svc.RegenerateBranch(context.Background(), "branch-1", dto.RegenerateBranchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regeneration is disabled")
}

func TestTimetableServiceDelete(t *testing.T) {
	repo, sections, branches, courses := testFixtures()
	repo.stored = &models.Timetable{ID: "tt-1", SectionID: "section-1"}
	svc := newTestTimetableService(repo, sections, branches, courses, 1)

	require.NoError(t, svc.Delete(context.Background(), "section-1"))
	assert.Equal(t, "section-1", repo.deleted)
}
