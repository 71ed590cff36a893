package medications

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

const (
	maxMedicationsPerUser = 20
	maxTimesPerMedication = 10
)

// Времена приёма хранятся как "HHMM": четыре цифры, 24-часовой
// формат, отсортированы по возрастанию. На входе принимается "HH:MM".
var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

type MedicationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Dose      string    `json:"dose"`
	Times     []string  `json:"times"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMedicationsResponse struct {
	Medications []MedicationDTO `json:"medications"`
}

type CreateMedicationRequest struct {
	Name  string   `json:"name"`
	Dose  string   `json:"dose"`
	Times []string `json:"times"`
}

type ScheduleEntryDTO struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Name         string    `json:"name"`
	Dose         string    `json:"dose"`
	Time         string    `json:"time"`
	DisplayTime  string    `json:"display_time"`
	Passed       bool      `json:"passed"`
}

type TodayScheduleResponse struct {
	Entries []ScheduleEntryDTO `json:"entries"`
}

type NextDoseResponse struct {
	Entry       *ScheduleEntryDTO `json:"entry"`
	DiffMinutes int               `json:"diff_minutes"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r CreateMedicationRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 80 {
		return fmt.Errorf("name must be at most 80 characters")
	}
	if len(strings.TrimSpace(r.Dose)) > 80 {
		return fmt.Errorf("dose must be at most 80 characters")
	}
	if len(r.Times) == 0 {
		return fmt.Errorf("at least one time is required")
	}
	if len(r.Times) > maxTimesPerMedication {
		return fmt.Errorf("too many times")
	}
	for i, raw := range r.Times {
		if _, err := NormalizeTime(raw); err != nil {
			return fmt.Errorf("times[%d]: %v", i, err)
		}
	}
	return nil
}

// NormalizeTime превращает "08:05" в хранимую форму "0805".
// Входные значения вроде "8:5" отбрасываются по шаблону.
func NormalizeTime(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !timePattern.MatchString(trimmed) {
		return "", fmt.Errorf("time %q does not match HH:MM", raw)
	}
	normalized := strings.Replace(trimmed, ":", "", 1)
	hour := int(normalized[0]-'0')*10 + int(normalized[1]-'0')
	minute := int(normalized[2]-'0')*10 + int(normalized[3]-'0')
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("time %q is out of range", raw)
	}
	return normalized, nil
}

// normalizeTimes отбрасывает дубликаты и сортирует по возрастанию.
func normalizeTimes(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		normalized, err := NormalizeTime(item)
		if err != nil {
			return nil, err
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	sort.Strings(result)
	return result, nil
}

// FormatTime отображает "0805" как "8:05 AM".
func FormatTime(hhmm string) string {
	if len(hhmm) != 4 {
		return hhmm
	}
	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, hhmm[2:], suffix)
}

func minuteOfDay(hhmm string) int {
	if len(hhmm) != 4 {
		return -1
	}
	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	minute := int(hhmm[2]-'0')*10 + int(hhmm[3]-'0')
	return hour*60 + minute
}

func toDTO(row storage.Medication) MedicationDTO {
	times := make([]string, len(row.Times))
	copy(times, row.Times)
	return MedicationDTO{
		ID:        row.ID,
		Name:      row.Name,
		Dose:      row.Dose,
		Times:     times,
		CreatedAt: row.CreatedAt,
	}
}
