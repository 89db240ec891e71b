package timeslot

import (
	"testing"
	"time"
)

func TestSlotForConcreteExamples(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{
			name: "Monday 07:30 is workday morning rush",
			at:   time.Date(2024, 7, 8, 7, 30, 0, 0, time.UTC),
			want: WorkdayMorningRush,
		},
		{
			name: "Saturday 22:00 is night before weekend day",
			at:   time.Date(2024, 7, 13, 22, 0, 0, 0, time.UTC),
			want: NightBeforeWeekendDay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlotFor(tt.at)
			if got.ID != tt.want {
				t.Errorf("SlotFor(%v) = %s (id %d), want id %d", tt.at, got.Name, got.ID, tt.want)
			}
		})
	}
}

func TestSlotForPartitionsEveryHour(t *testing.T) {
	// every (weekday, hour) pair must be matched by exactly one canonical slot
	start := time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC) // a Sunday
	for i := 0; i < 24*7; i++ {
		at := start.Add(time.Duration(i) * time.Hour)
		matchCount := 0
		for _, s := range All {
			if s.Matches(at) {
				matchCount++
			}
		}
		if matchCount != 1 {
			t.Errorf("at %v (weekday %v hour %d): %d canonical slots matched, want exactly 1",
				at, at.Weekday(), at.Hour(), matchCount)
		}
	}
}

func TestSlotForRoundTrip(t *testing.T) {
	start := time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24*7; i += 3 {
		at := start.Add(time.Duration(i) * time.Hour)
		slot := SlotFor(at)
		if !slot.Matches(at) {
			t.Errorf("SlotFor(%v) returned %s which does not match itself", at, slot.Name)
		}
	}
}

func TestDefaultMatchesEverything(t *testing.T) {
	for i := 0; i < 24*7; i += 5 {
		at := time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
		if !Default.Matches(at) {
			t.Errorf("Default did not match %v", at)
		}
	}
}

func TestDefaultIDDoesNotCollide(t *testing.T) {
	for _, s := range All {
		if s.ID == DefaultID {
			t.Errorf("canonical slot %s collides with DefaultID", s.Name)
		}
	}
}
