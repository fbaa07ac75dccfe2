package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/Sai69186/ai-time-table-generator/internal/dto"
	"github.com/Sai69186/ai-time-table-generator/internal/models"
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
	appErrors "github.com/Sai69186/ai-time-table-generator/pkg/errors"
	"github.com/Sai69186/ai-time-table-generator/pkg/export"
	"github.com/Sai69186/ai-time-table-generator/pkg/jobs"
)

type timetableRepository interface {
	ReplaceForSection(ctx context.Context, timetable *models.Timetable, slots []models.TimetableSlot) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	FindBySection(ctx context.Context, sectionID string) (*models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
	DeleteBySection(ctx context.Context, sectionID string) error
}

type timetableSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	ListByBranch(ctx context.Context, branchID string) ([]models.Section, error)
}

type timetableBranchReader interface {
	FindByID(ctx context.Context, id string) (*models.Branch, error)
}

type timetableCourseReader interface {
	ListDetailedBySection(ctx context.Context, sectionID string) ([]models.CourseDetail, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// JobTypeRegenerateSection labels queued per-section regeneration work.
const JobTypeRegenerateSection = "regenerate-section"

// RegenerateSectionJob is the payload queued for each section of a branch
// regeneration request.
type RegenerateSectionJob struct {
	SectionID    string
	Config       dto.TimetableConfigRequest
	AllowPartial bool
}

const viewCachePrefix = "timetable:view:"

// TimetableService orchestrates timetable generation: it loads the section's
// courses, runs the pure generation engine and decides, based on the request
// policy, whether a conflicted result is persisted or discarded.
type TimetableService struct {
	repo      timetableRepository
	sections  timetableSectionReader
	branches  timetableBranchReader
	courses   timetableCourseReader
	generator *timetable.Generator
	cache     *CacheService
	metrics   *MetricsService
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	defaults  timetable.Config
	cacheTTL  time.Duration
}

// NewTimetableService constructs the timetable service. The queue may be nil
// when background regeneration is disabled.
func NewTimetableService(
	repo timetableRepository,
	sections timetableSectionReader,
	branches timetableBranchReader,
	courses timetableCourseReader,
	generator *timetable.Generator,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	defaults timetable.Config,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = timetable.NewGenerator(nil, logger)
	}
	return &TimetableService{
		repo:      repo,
		sections:  sections,
		branches:  branches,
		courses:   courses,
		generator: generator,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
		cacheTTL:  10 * time.Minute,
	}
}

// SetQueue attaches the background queue used for branch regeneration.
func (s *TimetableService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Generate produces a fresh timetable for one section. When the result has
// conflicts and AllowPartial is false, nothing is persisted and the caller
// gets the full conflict list back instead.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	section, err := s.sections.FindByID(ctx, req.SectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	branch, err := s.branches.FindByID(ctx, section.BranchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	details, err := s.courses.ListDetailedBySection(ctx, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section courses")
	}

	result, err := s.generator.Generate(*section, details, s.buildConfig(req.Config))
	if err != nil {
		s.metrics.RecordGeneration("failed", 0, 0)
		switch err.(type) {
		case *timetable.ConfigurationError:
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidSchedule.Code, appErrors.ErrInvalidSchedule.Status, err.Error())
		case *timetable.NoCoursesError:
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "section has no courses to schedule")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation failed")
		}
	}

	resp := &dto.GenerateTimetableResponse{
		View:              result.View,
		Conflicts:         conflictList(result.Conflicts),
		TotalCourses:      len(details),
		TotalRequirements: result.TotalRequirements,
		PlacedCount:       result.PlacedCount,
	}

	if len(result.Conflicts) > 0 && !req.AllowPartial {
		s.metrics.RecordGeneration("discarded", result.PlacedCount, result.TotalRequirements-result.PlacedCount)
		s.logger.Warn("timetable discarded due to conflicts",
			zap.String("section_id", section.ID),
			zap.Int("conflicts", len(result.Conflicts)),
		)
		return resp, nil
	}

	conflictsJSON, err := json.Marshal(conflictList(result.Conflicts))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode conflicts")
	}
	result.Timetable.Name = fmt.Sprintf("%s %s", branch.Name, result.Timetable.Name)
	result.Timetable.Conflicts = types.JSONText(conflictsJSON)

	if err := s.repo.ReplaceForSection(ctx, &result.Timetable, result.Slots); err != nil {
		s.metrics.RecordGeneration("failed", 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, viewCachePrefix+section.ID)
		_ = s.cache.Set(ctx, viewCachePrefix+section.ID, result.View, s.cacheTTL)
	}

	s.metrics.RecordGeneration("saved", result.PlacedCount, result.TotalRequirements-result.PlacedCount)
	resp.TimetableID = result.Timetable.ID
	resp.Saved = true
	return resp, nil
}

// GetView returns the rendered weekly view for a section's stored timetable.
// The boolean reports whether the view came from cache.
func (s *TimetableService) GetView(ctx context.Context, sectionID string) (*timetable.View, bool, error) {
	if s.cache.Enabled() {
		var cached timetable.View
		if hit, _ := s.cache.Get(ctx, viewCachePrefix+sectionID, &cached); hit {
			return &cached, true, nil
		}
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	stored, err := s.repo.FindBySection(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated for this section")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	view, err := s.assembleStoredView(ctx, section, stored)
	if err != nil {
		return nil, false, err
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, viewCachePrefix+sectionID, view, s.cacheTTL)
	}
	return view, false, nil
}

// GetConflicts returns the conflict report recorded on a stored timetable.
func (s *TimetableService) GetConflicts(ctx context.Context, timetableID string) (*dto.ConflictReport, error) {
	stored, err := s.repo.FindByID(ctx, timetableID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	conflicts := decodeConflicts(stored.Conflicts)
	status := "clean"
	if len(conflicts) > 0 {
		status = "conflicted"
	}
	return &dto.ConflictReport{
		TimetableID:    stored.ID,
		Conflicts:      conflicts,
		TotalConflicts: len(conflicts),
		Status:         status,
	}, nil
}

// Export renders a stored timetable as PDF or CSV bytes.
func (s *TimetableService) Export(ctx context.Context, timetableID, format string) ([]byte, string, string, error) {
	stored, err := s.repo.FindByID(ctx, timetableID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	section, err := s.sections.FindByID(ctx, stored.SectionID)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	view, err := s.assembleStoredView(ctx, section, stored)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Subject", "Teacher", "Room"},
	}
	for _, day := range view.WorkingDays {
		for _, sv := range view.Days[day] {
			row := map[string]string{
				"Day":   day,
				"Start": sv.StartTime,
				"End":   sv.EndTime,
			}
			if sv.IsBreak {
				row["Subject"] = "Lunch Break"
			} else {
				row["Subject"] = sv.SubjectName
				row["Teacher"] = sv.TeacherName
				row["Room"] = sv.RoomNumber
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}

	switch format {
	case "csv":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, fmt.Sprintf("timetable-%s.csv", section.Name), "text/csv", nil
	case "", "pdf":
		data, err := export.NewPDFExporter().Render(dataset, stored.Name)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, fmt.Sprintf("timetable-%s.pdf", section.Name), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
}

// RegenerateBranch enqueues a regeneration job for every section of a branch.
// Sections are generated independently; one section's conflicts never block
// another's.
func (s *TimetableService) RegenerateBranch(ctx context.Context, branchID string, req dto.RegenerateBranchRequest) (*dto.RegenerateBranchResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "background regeneration is disabled")
	}

	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	sections, err := s.sections.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list branch sections")
	}

	enqueued := 0
	for _, section := range sections {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: JobTypeRegenerateSection,
			Payload: RegenerateSectionJob{
				SectionID:    section.ID,
				Config:       req.Config,
				AllowPartial: req.AllowPartial,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue section regeneration",
				zap.String("section_id", section.ID),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	s.logger.Info("branch regeneration enqueued",
		zap.String("branch_id", branchID),
		zap.Int("sections", enqueued),
	)
	return &dto.RegenerateBranchResponse{BranchID: branchID, Enqueued: enqueued}, nil
}

// HandleRegenerateJob is the queue handler for per-section regeneration.
func (s *TimetableService) HandleRegenerateJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RegenerateSectionJob)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	_, err := s.Generate(ctx, dto.GenerateTimetableRequest{
		SectionID:    payload.SectionID,
		Config:       payload.Config,
		AllowPartial: payload.AllowPartial,
	})
	return err
}

// Delete removes the stored timetable of a section and drops its cached view.
func (s *TimetableService) Delete(ctx context.Context, sectionID string) error {
	if _, err := s.repo.FindBySection(ctx, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "no timetable generated for this section")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if err := s.repo.DeleteBySection(ctx, sectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, viewCachePrefix+sectionID)
	}
	return nil
}

// buildConfig fills unset request fields with the service defaults.
func (s *TimetableService) buildConfig(req dto.TimetableConfigRequest) timetable.Config {
	cfg := s.defaults
	if req.StartTime != "" {
		cfg.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		cfg.EndTime = req.EndTime
	}
	if req.PeriodDuration > 0 {
		cfg.PeriodDuration = req.PeriodDuration
	}
	if req.BreakDuration > 0 {
		cfg.BreakDuration = req.BreakDuration
	}
	if req.LunchStart != "" {
		cfg.LunchStart = req.LunchStart
	}
	if req.LunchDuration > 0 {
		cfg.LunchDuration = req.LunchDuration
	}
	if len(req.WorkingDays) > 0 {
		cfg.WorkingDays = req.WorkingDays
	}
	return cfg
}

// assembleStoredView reconstructs the day-keyed view from persisted rows,
// joining class slots back to their course identity.
func (s *TimetableService) assembleStoredView(ctx context.Context, section *models.Section, stored *models.Timetable) (*timetable.View, error) {
	slots, err := s.repo.ListSlots(ctx, stored.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	details, err := s.courses.ListDetailedBySection(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section courses")
	}
	byCourse := make(map[string]models.CourseDetail, len(details))
	for _, d := range details {
		byCourse[d.ID] = d
	}

	conflicts := decodeConflicts(stored.Conflicts)
	view := &timetable.View{
		SectionID:    section.ID,
		SectionName:  section.Name,
		WorkingDays:  stored.WorkingDayList(),
		Days:         make(map[string][]timetable.SlotView),
		Conflicts:    conflicts,
		TotalCourses: len(details),
	}
	for _, day := range view.WorkingDays {
		view.Days[day] = nil
	}

	placed := 0
	for _, slot := range slots {
		sv := timetable.SlotView{
			SlotIndex: slot.SlotIndex,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			IsBreak:   slot.IsBreak,
		}
		if slot.IsBreak {
			if slot.BreakType != nil {
				sv.BreakType = string(*slot.BreakType)
			}
		} else {
			placed++
			if slot.CourseID != nil {
				sv.CourseID = *slot.CourseID
				if d, ok := byCourse[*slot.CourseID]; ok {
					sv.SubjectName = d.Subject.Name
					sv.SubjectCode = d.Subject.Code
					sv.SubjectType = string(d.Subject.SubjectType)
					sv.TeacherName = d.Teacher.Name
					sv.TeacherEmployeeID = d.Teacher.EmployeeID
					if d.Room != nil {
						sv.RoomNumber = d.Room.Number
						if d.Room.Building != nil {
							sv.Building = *d.Room.Building
						}
					} else {
						sv.RoomNumber = "TBA"
						sv.Building = "TBA"
					}
				}
			}
		}
		view.Days[slot.Day] = append(view.Days[slot.Day], sv)
	}

	view.PlacedCount = placed
	view.TotalRequirements = placed + unmetConflictCount(conflicts)
	return view, nil
}

func conflictList(conflicts []timetable.ConflictRecord) []timetable.ConflictRecord {
	if conflicts == nil {
		return []timetable.ConflictRecord{}
	}
	return conflicts
}

func decodeConflicts(raw types.JSONText) []timetable.ConflictRecord {
	if len(raw) == 0 {
		return []timetable.ConflictRecord{}
	}
	var conflicts []timetable.ConflictRecord
	if err := json.Unmarshal(raw, &conflicts); err != nil || conflicts == nil {
		return []timetable.ConflictRecord{}
	}
	return conflicts
}

func unmetConflictCount(conflicts []timetable.ConflictRecord) int {
	count := 0
	for _, c := range conflicts {
		if c.Type == timetable.ConflictUnmet {
			count++
		}
	}
	return count
}
