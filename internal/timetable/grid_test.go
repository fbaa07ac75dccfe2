package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func referenceConfig() Config {
	return Config{
		StartTime:      "09:00",
		EndTime:        "16:00",
		PeriodDuration: 50,
		BreakDuration:  10,
		LunchStart:     "12:30",
		LunchDuration:  45,
		WorkingDays:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	}
}

func TestBuildGridReferenceDay(t *testing.T) {
	grid, err := BuildGrid(referenceConfig())
	require.NoError(t, err)
	require.Len(t, grid.Days, 5)

	expected := []string{
		"09:00-09:50",
		"10:00-10:50",
		"11:00-11:50",
		"13:15-14:05",
		"14:15-15:05",
		"15:15-16:05",
	}
	for _, day := range grid.Days {
		slots := grid.PeriodSlots(day)
		require.Len(t, slots, 6, "day %s", day)
		for i, slot := range slots {
			assert.Equal(t, expected[i], slot.TimeRange())
			assert.Equal(t, i+1, slot.Index)
			assert.False(t, slot.IsBreak)
		}
	}

	lunches := grid.BreakSlots()
	require.Len(t, lunches, 5)
	for _, lunch := range lunches {
		assert.True(t, lunch.IsBreak)
		assert.Equal(t, models.BreakTypeLunch, lunch.BreakType)
		assert.Equal(t, "12:30-13:15", lunch.TimeRange())
	}
}

func TestBuildGridSlotsStrictlyIncreasing(t *testing.T) {
	cfg := referenceConfig()
	cfg.PeriodDuration = 45
	cfg.BreakDuration = 5
	grid, err := BuildGrid(cfg)
	require.NoError(t, err)

	for _, day := range grid.Days {
		slots := grid.PeriodSlots(day)
		require.NotEmpty(t, slots)
		for i := 1; i < len(slots); i++ {
			assert.Greater(t, slots[i].Start, slots[i-1].Start)
			assert.GreaterOrEqual(t, slots[i].Start, slots[i-1].End, "slots must not overlap")
		}
	}
}

func TestBuildGridLunchOutsideWindow(t *testing.T) {
	cfg := referenceConfig()
	cfg.LunchStart = "18:00"
	grid, err := BuildGrid(cfg)
	require.NoError(t, err)
	assert.Empty(t, grid.BreakSlots())
}

func TestBuildGridDeduplicatesDays(t *testing.T) {
	cfg := referenceConfig()
	cfg.WorkingDays = []string{"Monday", "Monday", "Tuesday"}
	grid, err := BuildGrid(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Tuesday"}, grid.Days)
}

func TestBuildGridRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"end before start", func(c *Config) { c.EndTime = "08:00" }},
		{"end equals start", func(c *Config) { c.EndTime = c.StartTime }},
		{"zero period", func(c *Config) { c.PeriodDuration = 0 }},
		{"negative break", func(c *Config) { c.BreakDuration = -5 }},
		{"zero lunch duration", func(c *Config) { c.LunchDuration = 0 }},
		{"malformed start", func(c *Config) { c.StartTime = "9 o'clock" }},
		{"malformed lunch", func(c *Config) { c.LunchStart = "25:99" }},
		{"no working days", func(c *Config) { c.WorkingDays = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := referenceConfig()
			tc.mutate(&cfg)
			_, err := BuildGrid(cfg)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 545, minutes)
	assert.Equal(t, "09:05", Clock(minutes))

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}
