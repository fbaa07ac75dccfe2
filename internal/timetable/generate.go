package timetable

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// Generator runs the full generation pipeline: grid building, requirement
// expansion, slot assignment, the independent conflict audit and view
// assembly. It performs no I/O; persistence of the result is the caller's
// concern, as is the decision to keep or discard a partially placed result.
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator builds a Generator. A nil rng gets a time-seeded source; tests
// inject a fixed seed for reproducible placement.
func NewGenerator(rng *rand.Rand, logger *zap.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{rng: rng, logger: logger}
}

// Result is the complete outcome of one generation call. Slots and Timetable
// carry no IDs; the persistence layer assigns them when (and if) it commits.
type Result struct {
	Timetable         models.Timetable
	Slots             []models.TimetableSlot
	Placements        []Placement
	View              *View
	Conflicts         []ConflictRecord
	TotalRequirements int
	PlacedCount       int
}

// Generate produces a timetable for one section. Invalid configuration fails
// with ConfigurationError and an empty course list with NoCoursesError before
// any assignment work begins. Unmet requirements and detected double bookings
// are returned as conflict records, never as errors.
func (g *Generator) Generate(section models.Section, courses []models.CourseDetail, cfg Config) (*Result, error) {
	grid, err := BuildGrid(cfg)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, &NoCoursesError{SectionID: section.ID}
	}

	requirements := ExpandRequirements(courses)
	assigner := NewAssigner(grid, g.rng, section.Name)
	placements, conflicts := assigner.Assign(requirements)

	// Defensive re-scan of the finished grid, independent of the
	// assigner's own bookkeeping.
	conflicts = append(conflicts, AuditGrid(placements)...)

	view := Assemble(section, grid, placements, conflicts, len(courses), len(requirements))

	result := &Result{
		Timetable:         g.buildTimetable(section, cfg),
		Slots:             buildSlots(grid, placements),
		Placements:        placements,
		View:              view,
		Conflicts:         conflicts,
		TotalRequirements: len(requirements),
		PlacedCount:       len(placements),
	}

	g.logger.Info("timetable generated",
		zap.String("section_id", section.ID),
		zap.Int("requirements", len(requirements)),
		zap.Int("placed", len(placements)),
		zap.Int("conflicts", len(conflicts)),
	)
	return result, nil
}

func (g *Generator) buildTimetable(section models.Section, cfg Config) models.Timetable {
	return models.Timetable{
		Name:           fmt.Sprintf("%s Year-%d Sem-%d", section.Name, section.Year, section.Semester),
		SectionID:      section.ID,
		StartTime:      cfg.StartTime,
		EndTime:        cfg.EndTime,
		PeriodDuration: cfg.PeriodDuration,
		BreakDuration:  cfg.BreakDuration,
		LunchStart:     cfg.LunchStart,
		LunchDuration:  cfg.LunchDuration,
		WorkingDays:    strings.Join(dedupeDays(cfg.WorkingDays), ","),
	}
}

func buildSlots(grid *Grid, placements []Placement) []models.TimetableSlot {
	slots := make([]models.TimetableSlot, 0, len(placements)+len(grid.BreakSlots()))
	for _, p := range placements {
		courseID := p.Course.ID
		slots = append(slots, models.TimetableSlot{
			CourseID:  &courseID,
			Day:       p.Slot.Day,
			SlotIndex: p.Slot.Index,
			StartTime: Clock(p.Slot.Start),
			EndTime:   Clock(p.Slot.End),
		})
	}
	for _, b := range grid.BreakSlots() {
		breakType := b.BreakType
		slots = append(slots, models.TimetableSlot{
			Day:       b.Day,
			StartTime: Clock(b.Start),
			EndTime:   Clock(b.End),
			IsBreak:   true,
			BreakType: &breakType,
		})
	}
	return slots
}
