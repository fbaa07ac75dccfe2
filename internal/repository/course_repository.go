package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching filters along with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, section_id, subject_id, teacher_id, room_id, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, column, order, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, section_id, subject_id, teacher_id, room_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListDetailedBySection returns the courses of one section joined with their
// subject, teacher and optional room. This is the generation engine's input.
func (r *CourseRepository) ListDetailedBySection(ctx context.Context, sectionID string) ([]models.CourseDetail, error) {
	const query = `SELECT
		c.id, c.section_id, c.subject_id, c.teacher_id, c.room_id, c.created_at, c.updated_at,
		s.id, s.name, s.code, s.credits, s.subject_type, s.hours_per_week, s.created_at, s.updated_at,
		t.id, t.name, t.employee_id, t.department, t.max_hours_per_day, t.max_hours_per_week, t.created_at, t.updated_at,
		r.id, r.number, r.building, r.capacity, r.room_type, r.created_at, r.updated_at
	FROM courses c
	JOIN subjects s ON s.id = c.subject_id
	JOIN teachers t ON t.id = c.teacher_id
	LEFT JOIN rooms r ON r.id = c.room_id
	WHERE c.section_id = $1
	ORDER BY s.name ASC`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list section courses: %w", err)
	}
	defer rows.Close()

	var details []models.CourseDetail
	for rows.Next() {
		var d models.CourseDetail
		var roomID, roomNumber, roomBuilding, roomType sql.NullString
		var roomCapacity sql.NullInt64
		var roomCreated, roomUpdated sql.NullTime

		if err := rows.Scan(
			&d.ID, &d.SectionID, &d.SubjectID, &d.TeacherID, &d.Course.RoomID, &d.Course.CreatedAt, &d.Course.UpdatedAt,
			&d.Subject.ID, &d.Subject.Name, &d.Subject.Code, &d.Subject.Credits, &d.Subject.SubjectType, &d.Subject.HoursPerWeek, &d.Subject.CreatedAt, &d.Subject.UpdatedAt,
			&d.Teacher.ID, &d.Teacher.Name, &d.Teacher.EmployeeID, &d.Teacher.Department, &d.Teacher.MaxHoursPerDay, &d.Teacher.MaxHoursPerWeek, &d.Teacher.CreatedAt, &d.Teacher.UpdatedAt,
			&roomID, &roomNumber, &roomBuilding, &roomCapacity, &roomType, &roomCreated, &roomUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan section course: %w", err)
		}

		if roomID.Valid {
			room := models.Room{
				ID:       roomID.String,
				Number:   roomNumber.String,
				Capacity: int(roomCapacity.Int64),
				RoomType: models.RoomType(roomType.String),
			}
			if roomBuilding.Valid {
				room.Building = &roomBuilding.String
			}
			if roomCreated.Valid {
				room.CreatedAt = roomCreated.Time
			}
			if roomUpdated.Valid {
				room.UpdatedAt = roomUpdated.Time
			}
			d.Room = &room
		}

		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate section courses: %w", err)
	}
	return details, nil
}

// ExistsBySectionSubject checks if the section already has a course for the
// subject.
func (r *CourseRepository) ExistsBySectionSubject(ctx context.Context, sectionID, subjectID string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE section_id = $1 AND subject_id = $2"
	args := []interface{}{sectionID, subjectID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section subject: %w", err)
	}
	return true, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, section_id, subject_id, teacher_id, room_id, created_at, updated_at)
		VALUES (:id, :section_id, :subject_id, :teacher_id, :room_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course record.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET section_id = :section_id, subject_id = :subject_id, teacher_id = :teacher_id, room_id = :room_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course record.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
