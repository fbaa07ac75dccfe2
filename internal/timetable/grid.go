package timetable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

// Config describes the daily time window and break layout used to build the
// weekly grid. Clock fields use HH:MM, durations are whole minutes.
type Config struct {
	StartTime      string
	EndTime        string
	PeriodDuration int
	BreakDuration  int
	LunchStart     string
	LunchDuration  int
	WorkingDays    []string
}

// Slot is a single cell of the weekly grid. Start and End are minutes since
// midnight. Index is 1-based among the period slots of a day and zero for
// break slots.
type Slot struct {
	Day       string
	Index     int
	Start     int
	End       int
	IsBreak   bool
	BreakType models.BreakType
}

// TimeRange renders the slot boundaries as "HH:MM-HH:MM".
func (s Slot) TimeRange() string {
	return Clock(s.Start) + "-" + Clock(s.End)
}

// Grid holds the placeable period slots per working day plus the break slots.
type Grid struct {
	Days    []string
	periods map[string][]Slot
	breaks  []Slot
}

// PeriodSlots returns the ordered period slots for one day.
func (g *Grid) PeriodSlots(day string) []Slot {
	return g.periods[day]
}

// BreakSlots returns every lunch/break slot across all days.
func (g *Grid) BreakSlots() []Slot {
	return g.breaks
}

// BuildGrid walks each working day in minute arithmetic, emitting period
// slots of PeriodDuration separated by BreakDuration gaps. A period that
// would overlap the lunch window yields the lunch slot instead, and the walk
// resumes at the end of lunch. Periods are emitted while they start before
// EndTime; a leftover window shorter than a period is dropped, never
// truncated.
func BuildGrid(cfg Config) (*Grid, error) {
	start, err := ParseClock(cfg.StartTime)
	if err != nil {
		return nil, &ConfigurationError{Field: "start_time", Reason: err.Error()}
	}
	end, err := ParseClock(cfg.EndTime)
	if err != nil {
		return nil, &ConfigurationError{Field: "end_time", Reason: err.Error()}
	}
	if end <= start {
		return nil, &ConfigurationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if cfg.PeriodDuration <= 0 {
		return nil, &ConfigurationError{Field: "period_duration", Reason: "must be positive"}
	}
	if cfg.BreakDuration <= 0 {
		return nil, &ConfigurationError{Field: "break_duration", Reason: "must be positive"}
	}
	if cfg.LunchDuration <= 0 {
		return nil, &ConfigurationError{Field: "lunch_duration", Reason: "must be positive"}
	}
	lunchStart, err := ParseClock(cfg.LunchStart)
	if err != nil {
		return nil, &ConfigurationError{Field: "lunch_start", Reason: err.Error()}
	}
	days := dedupeDays(cfg.WorkingDays)
	if len(days) == 0 {
		return nil, &ConfigurationError{Field: "working_days", Reason: "must contain at least one day"}
	}

	// Lunch outside the working window is simply not emitted.
	lunchInWindow := lunchStart >= start && lunchStart < end
	lunchEnd := lunchStart + cfg.LunchDuration

	grid := &Grid{Days: days, periods: make(map[string][]Slot, len(days))}
	for _, day := range days {
		cursor := start
		index := 0
		lunchEmitted := false
		for cursor < end {
			periodEnd := cursor + cfg.PeriodDuration
			if lunchInWindow && !lunchEmitted && cursor < lunchEnd && periodEnd > lunchStart {
				grid.breaks = append(grid.breaks, Slot{
					Day:       day,
					Start:     lunchStart,
					End:       lunchEnd,
					IsBreak:   true,
					BreakType: models.BreakTypeLunch,
				})
				cursor = lunchEnd
				lunchEmitted = true
				continue
			}
			index++
			grid.periods[day] = append(grid.periods[day], Slot{
				Day:   day,
				Index: index,
				Start: cursor,
				End:   periodEnd,
			})
			cursor = periodEnd + cfg.BreakDuration
		}
	}
	return grid, nil
}

// ParseClock converts an HH:MM string to minutes since midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not a valid HH:MM time", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%q is not a valid HH:MM time", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%q is not a valid HH:MM time", raw)
	}
	return hours*60 + minutes, nil
}

// Clock renders minutes since midnight as HH:MM.
func Clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func dedupeDays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	result := make([]string, 0, len(days))
	for _, day := range days {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	return result
}
