package medications

import (
	"sort"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
)

// BuildSchedule разворачивает каждую пару (лекарство, время) в
// отдельную запись дневного расписания, отсортированную по времени.
// Пропущенные сегодня приёмы помечаются как passed и никогда не
// переносятся на следующий день.
func BuildSchedule(meds []storage.Medication, now time.Time) []ScheduleEntryDTO {
	nowMinute := now.Hour()*60 + now.Minute()

	entries := make([]ScheduleEntryDTO, 0, len(meds))
	for _, med := range meds {
		for _, t := range med.Times {
			entries = append(entries, ScheduleEntryDTO{
				MedicationID: med.ID,
				Name:         med.Name,
				Dose:         med.Dose,
				Time:         t,
				DisplayTime:  FormatTime(t),
				Passed:       minuteOfDay(t) <= nowMinute,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
	return entries
}

// NextDose выбирает запись с наименьшей строго положительной разницей
// в минутах от текущего момента. Возвращает nil, когда на сегодня
// приёмов не осталось: первый приём завтрашнего дня не учитывается.
func NextDose(entries []ScheduleEntryDTO, now time.Time) (*ScheduleEntryDTO, int) {
	nowMinute := now.Hour()*60 + now.Minute()

	var best *ScheduleEntryDTO
	bestDiff := 0
	for i := range entries {
		diff := minuteOfDay(entries[i].Time) - nowMinute
		if diff <= 0 {
			continue
		}
		if best == nil || diff < bestDiff {
			best = &entries[i]
			bestDiff = diff
		}
	}
	return best, bestDiff
}
