package medications

import (
	"testing"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

func TestNormalizeTimeRoundTrip(t *testing.T) {
	normalized, err := NormalizeTime("08:05")
	if err != nil {
		t.Fatalf("NormalizeTime(08:05): %v", err)
	}
	if normalized != "0805" {
		t.Fatalf("stored form = %q, want 0805", normalized)
	}
	if got := FormatTime(normalized); got != "8:05 AM" {
		t.Fatalf("display form = %q, want 8:05 AM", got)
	}
}

func TestNormalizeTimeRejectsShortForm(t *testing.T) {
	if _, err := NormalizeTime("8:5"); err == nil {
		t.Fatal("expected 8:5 to be rejected")
	}
	if _, err := NormalizeTime("25:00"); err == nil {
		t.Fatal("expected 25:00 to be rejected")
	}
	if _, err := NormalizeTime("12:60"); err == nil {
		t.Fatal("expected 12:60 to be rejected")
	}
}

func TestFormatTimeEdges(t *testing.T) {
	cases := map[string]string{
		"0000": "12:00 AM",
		"1200": "12:00 PM",
		"2000": "8:00 PM",
		"0930": "9:30 AM",
	}
	for input, want := range cases {
		if got := FormatTime(input); got != want {
			t.Errorf("FormatTime(%s) = %q, want %q", input, got, want)
		}
	}
}

func TestTodayScheduleAndNextDose(t *testing.T) {
	meds := []storage.Medication{{
		ID:    uuid.New(),
		Name:  "Aspirin",
		Dose:  "100mg",
		Times: []string{"0800", "2000"},
	}}
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)

	entries := BuildSchedule(meds, now)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Time != "0800" || entries[1].Time != "2000" {
		t.Fatalf("entries not sorted ascending: %v", entries)
	}
	if !entries[0].Passed {
		t.Fatal("08:00 dose must be marked passed at 09:00")
	}
	if entries[1].Passed {
		t.Fatal("20:00 dose must not be passed at 09:00")
	}

	next, diff := NextDose(entries, now)
	if next == nil {
		t.Fatal("expected a next dose")
	}
	if next.Time != "2000" {
		t.Fatalf("next dose = %s, want 2000", next.Time)
	}
	if diff != 660 {
		t.Fatalf("diff = %d minutes, want 660", diff)
	}
}

func TestNextDoseNeverCrossesMidnight(t *testing.T) {
	meds := []storage.Medication{{
		ID:    uuid.New(),
		Name:  "Aspirin",
		Times: []string{"0800"},
	}}
	now := time.Date(2025, 6, 15, 22, 0, 0, 0, time.Local)

	next, _ := NextDose(BuildSchedule(meds, now), now)
	if next != nil {
		t.Fatalf("expected no next dose after the last time of day, got %v", next)
	}
}

func TestScheduleSortsAcrossMedications(t *testing.T) {
	meds := []storage.Medication{
		{ID: uuid.New(), Name: "B", Times: []string{"2100"}},
		{ID: uuid.New(), Name: "A", Times: []string{"0700", "1300"}},
	}
	now := time.Date(2025, 6, 15, 6, 0, 0, 0, time.Local)

	entries := BuildSchedule(meds, now)
	want := []string{"0700", "1300", "2100"}
	for i, w := range want {
		if entries[i].Time != w {
			t.Fatalf("entry %d = %s, want %s", i, entries[i].Time, w)
		}
	}
}
