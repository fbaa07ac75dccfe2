package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func detailColumns() []string {
	return []string{
		"c_id", "c_section_id", "c_subject_id", "c_teacher_id", "c_room_id", "c_created_at", "c_updated_at",
		"s_id", "s_name", "s_code", "s_credits", "s_subject_type", "s_hours_per_week", "s_created_at", "s_updated_at",
		"t_id", "t_name", "t_employee_id", "t_department", "t_max_day", "t_max_week", "t_created_at", "t_updated_at",
		"r_id", "r_number", "r_building", "r_capacity", "r_room_type", "r_created_at", "r_updated_at",
	}
}

func TestCourseRepositoryListDetailedBySection(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(detailColumns()).
		AddRow(
			"course-1", "section-1", "subject-1", "teacher-1", "room-1", now, now,
			"subject-1", "Data Structures", "CS201", 4, "theory", 4, now, now,
			"teacher-1", "Ada", "EMP1", nil, 6, 24, now, now,
			"room-1", "101", "Block A", 60, "classroom", now, now,
		).
		AddRow(
			"course-2", "section-1", "subject-2", "teacher-2", nil, now, now,
			"subject-2", "Physics Lab", "PH210", 2, "lab", 2, now, now,
			"teacher-2", "Grace", "EMP2", nil, 6, 24, now, now,
			nil, nil, nil, nil, nil, nil, nil,
		)
	mock.ExpectQuery("SELECT\\s+c.id, c.section_id, .+ FROM courses c").
		WithArgs("section-1").
		WillReturnRows(rows)

	details, err := repo.ListDetailedBySection(context.Background(), "section-1")
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "Data Structures", details[0].Subject.Name)
	assert.Equal(t, "Ada", details[0].Teacher.Name)
	require.NotNil(t, details[0].Room)
	assert.Equal(t, "101", details[0].Room.Number)
	assert.Equal(t, models.RoomTypeClassroom, details[0].Room.RoomType)

	assert.Equal(t, models.SubjectTypeLab, details[1].Subject.SubjectType)
	assert.Nil(t, details[1].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsBySectionSubject(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE section_id = $1 AND subject_id = $2 LIMIT 1")).
		WithArgs("section-1", "subject-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsBySectionSubject(context.Background(), "section-1", "subject-1", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "section-1", "subject-1", "teacher-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{SectionID: "section-1", SubjectID: "subject-1", TeacherID: "teacher-1"}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "section_id", "subject_id", "teacher_id", "room_id", "created_at", "updated_at"}).
		AddRow("course-1", "section-1", "subject-1", "teacher-1", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, section_id, subject_id, teacher_id, room_id, created_at, updated_at FROM courses WHERE 1=1 AND section_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("section-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE 1=1 AND section_id = $1")).
		WithArgs("section-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.CourseFilter{SectionID: "section-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
