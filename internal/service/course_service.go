package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
	appErrors "github.com/Sai69186/ai-time-table-generator/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListDetailedBySection(ctx context.Context, sectionID string) ([]models.CourseDetail, error)
	ExistsBySectionSubject(ctx context.Context, sectionID, subjectID string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type courseSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type courseTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type courseRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// CreateCourseRequest assigns a subject and teacher to a section. RoomID is
// optional; unassigned courses render as TBA in generated timetables.
type CreateCourseRequest struct {
	SectionID string  `json:"section_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	RoomID    *string `json:"room_id"`
}

// UpdateCourseRequest modifies course fields.
type UpdateCourseRequest struct {
	SectionID string  `json:"section_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	RoomID    *string `json:"room_id"`
}

// CourseService handles course domain workflows.
type CourseService struct {
	repo      courseRepository
	sections  courseSectionReader
	subjects  courseSubjectReader
	teachers  courseTeacherReader
	rooms     courseRoomReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, sections courseSectionReader, subjects courseSubjectReader, teachers courseTeacherReader, rooms courseRoomReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:      repo,
		sections:  sections,
		subjects:  subjects,
		teachers:  teachers,
		rooms:     rooms,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated courses.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListBySection returns the fully joined courses of one section.
func (s *CourseService) ListBySection(ctx context.Context, sectionID string) ([]models.CourseDetail, error) {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	details, err := s.repo.ListDetailedBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section courses")
	}
	return details, nil
}

// Create assigns a subject and teacher to a section. A section holds at most
// one course per subject.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if err := s.checkReferences(ctx, req.SectionID, req.SubjectID, req.TeacherID, req.RoomID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySectionSubject(ctx, req.SectionID, req.SubjectID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "section already has a course for this subject")
	}

	course := &models.Course{
		SectionID: req.SectionID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.checkReferences(ctx, req.SectionID, req.SubjectID, req.TeacherID, req.RoomID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySectionSubject(ctx, req.SectionID, req.SubjectID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section subject")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "section already has a course for this subject")
	}

	course.SectionID = req.SectionID
	course.SubjectID = req.SubjectID
	course.TeacherID = req.TeacherID
	course.RoomID = req.RoomID

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

func (s *CourseService) checkReferences(ctx context.Context, sectionID, subjectID, teacherID string, roomID *string) error {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if roomID != nil && *roomID != "" {
		if _, err := s.rooms.FindByID(ctx, *roomID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "room not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
	}
	return nil
}
