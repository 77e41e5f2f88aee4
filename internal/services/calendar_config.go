package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultHolidays are the US federal holidays observed in 2025 and 2026
var DefaultHolidays = []string{
	"2025-01-01", "2025-01-20", "2025-02-17", "2025-05-26", "2025-06-19", "2025-07-04",
	"2025-09-01", "2025-10-13", "2025-11-11", "2025-11-27", "2025-12-25",
	"2026-01-01", "2026-01-19", "2026-02-16", "2026-05-25", "2026-06-19", "2026-07-03",
	"2026-09-07", "2026-10-12", "2026-11-11", "2026-11-26", "2026-12-25",
}

// calendarFile is the YAML layout of CALENDAR_FILE
type calendarFile struct {
	Timezone     string              `yaml:"timezone"`
	WorkingHours map[string][]string `yaml:"working_hours"`
	Holidays     []string            `yaml:"holidays"`
}

// LoadWorkingCalendar builds the calendar from a YAML file, or from the
// built-in defaults when path is empty. A nil loc falls back to the file's
// timezone and then to the local zone.
func LoadWorkingCalendar(path string, loc *time.Location) (*WorkingCalendar, error) {
	if path == "" {
		return NewWorkingCalendar(models.DefaultWorkingHours(), DefaultHolidays, loc)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}
	return ParseWorkingCalendar(data, loc)
}

// ParseWorkingCalendar builds a calendar from YAML bytes
func ParseWorkingCalendar(data []byte, loc *time.Location) (*WorkingCalendar, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse calendar file: %w", err)
	}

	if loc == nil && file.Timezone != "" {
		fileLoc, err := time.LoadLocation(file.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid calendar timezone %q: %w", file.Timezone, err)
		}
		loc = fileLoc
	}

	hours := models.DefaultWorkingHours()
	if file.WorkingHours != nil {
		parsed, err := parseWorkingHours(file.WorkingHours)
		if err != nil {
			return nil, err
		}
		hours = parsed
	}
	return NewWorkingCalendar(hours, file.Holidays, loc)
}

func parseWorkingHours(raw map[string][]string) (models.WorkingHours, error) {
	var hours models.WorkingHours
	for name, window := range raw {
		day, ok := parseWeekday(name)
		if !ok {
			return hours, fmt.Errorf("%w: unknown weekday %q", models.ErrInvalidWorkingHours, name)
		}
		if len(window) == 0 {
			continue
		}
		if len(window) != 2 {
			return hours, fmt.Errorf("%w: %s needs [start, end]", models.ErrInvalidWorkingHours, name)
		}
		start, err := models.ParseTimeOfDay(window[0])
		if err != nil {
			return hours, fmt.Errorf("%w: %v", models.ErrInvalidWorkingHours, err)
		}
		end, err := models.ParseTimeOfDay(window[1])
		if err != nil {
			return hours, fmt.Errorf("%w: %v", models.ErrInvalidWorkingHours, err)
		}
		hours[day] = &models.BusinessHours{Start: start, End: end}
	}
	return hours, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}
