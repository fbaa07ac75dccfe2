package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryReplaceForSection(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	courseID := "course-1"
	lunch := models.BreakTypeLunch
	timetable := &models.Timetable{
		Name:           "CS-A Year-2 Sem-3",
		SectionID:      "section-1",
		StartTime:      "09:00",
		EndTime:        "16:00",
		PeriodDuration: 50,
		BreakDuration:  10,
		LunchStart:     "12:30",
		LunchDuration:  45,
		WorkingDays:    "Monday,Tuesday",
		Conflicts:      types.JSONText("[]"),
	}
	slots := []models.TimetableSlot{
		{CourseID: &courseID, Day: "Monday", SlotIndex: 1, StartTime: "09:00", EndTime: "09:50"},
		{Day: "Monday", SlotIndex: 0, StartTime: "12:30", EndTime: "13:15", IsBreak: true, BreakType: &lunch},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE timetable_id IN (SELECT id FROM timetables WHERE section_id = $1)")).
		WithArgs("section-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE section_id = $1")).
		WithArgs("section-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO timetables").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForSection(context.Background(), timetable, slots)
	require.NoError(t, err)
	assert.NotEmpty(t, timetable.ID)
	assert.Equal(t, timetable.ID, slots[0].TimetableID)
	assert.Equal(t, timetable.ID, slots[1].TimetableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceRollsBackOnSlotFailure(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	timetable := &models.Timetable{SectionID: "section-1", WorkingDays: "Monday"}
	slots := []models.TimetableSlot{{Day: "Monday", SlotIndex: 1, StartTime: "09:00", EndTime: "09:50"}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_slots").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM timetables").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO timetables").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_slots").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceForSection(context.Background(), timetable, slots)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindBySection(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "section_id", "start_time", "end_time", "period_duration", "break_duration", "lunch_start", "lunch_duration", "working_days", "conflicts", "created_at", "updated_at"}).
		AddRow("tt-1", "CS-A Year-2 Sem-3", "section-1", "09:00", "16:00", 50, 10, "12:30", 45, "Monday,Tuesday", []byte("[]"), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, section_id, .+ FROM timetables WHERE section_id = \\$1").
		WithArgs("section-1").
		WillReturnRows(rows)

	timetable, err := repo.FindBySection(context.Background(), "section-1")
	require.NoError(t, err)
	assert.Equal(t, "tt-1", timetable.ID)
	assert.Equal(t, []string{"Monday", "Tuesday"}, timetable.WorkingDayList())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListSlots(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	courseID := "course-1"
	rows := sqlmock.NewRows([]string{"id", "timetable_id", "course_id", "day", "slot_index", "start_time", "end_time", "is_break", "break_type", "created_at"}).
		AddRow("s1", "tt-1", courseID, "Monday", 1, "09:00", "09:50", false, nil, time.Now()).
		AddRow("s2", "tt-1", nil, "Monday", 0, "12:30", "13:15", true, "lunch", time.Now())
	mock.ExpectQuery("SELECT id, timetable_id, course_id, .+ FROM timetable_slots WHERE timetable_id = \\$1").
		WithArgs("tt-1").
		WillReturnRows(rows)

	slots, err := repo.ListSlots(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "course-1", *slots[0].CourseID)
	assert.True(t, slots[1].IsBreak)
	assert.Equal(t, models.BreakTypeLunch, *slots[1].BreakType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
