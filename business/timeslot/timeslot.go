// Package timeslot classifies a wall-clock instant into one of the 11
// canonical (weekday-range x hour-range) buckets used to stratify delay
// observations, plus a synthetic DEFAULT bucket that matches every instant.
package timeslot

import "time"

// TimeSlot is one of the 11 canonical (weekday-range, hour-range) buckets,
// or the synthetic DEFAULT bucket. MinWeekday/MaxWeekday use time.Weekday
// numbering (Sunday = 0). A slot whose MinWeekday > MaxWeekday wraps across
// the week boundary; a slot whose MinHour > MaxHour wraps across midnight.
type TimeSlot struct {
	ID         int
	Name       string
	MinWeekday time.Weekday
	MaxWeekday time.Weekday
	MinHour    int
	MaxHour    int
	// isDefault marks the synthetic slot that matches every instant.
	isDefault bool
}

// DefaultID is the id of the synthetic DEFAULT slot. It is outside the
// 1..11 range used by the canonical slots so it never collides with them.
const DefaultID = 0

// Canonical slot ids, in the order All lists them.
const (
	WorkdayMorningRush = iota + 1
	WorkdayMidday
	WorkdayAfternoonRush
	WorkdayEvening
	WorkdayNight
	NightBeforeWeekday
	NightBeforeWeekendDay
	SaturdayDay
	SaturdayEvening
	SundayDay
	SundayEvening
)

// Default is the synthetic slot that matches any instant.
var Default = TimeSlot{ID: DefaultID, Name: "DEFAULT", isDefault: true}

// All holds the 11 canonical slots. Together their weekday/hour ranges
// form a total partition of every (weekday, hour) pair: each of the 168
// cells in that grid is covered by exactly one slot below.
//
//	Mon-Fri  6- 8  WORKDAY_MORNING_RUSH
//	Mon-Fri  9-15  WORKDAY_MIDDAY
//	Mon-Fri 16-18  WORKDAY_AFTERNOON_RUSH
//	Mon-Fri 19-21  WORKDAY_EVENING
//	Mon-Thu 22- 5  WORKDAY_NIGHT          (wraps past midnight)
//	Sun     22- 5  NIGHT_BEFORE_WEEKDAY   (wraps past midnight)
//	Fri-Sat 22- 5  NIGHT_BEFORE_WEEKEND_DAY (wraps past midnight)
//	Sat      6-17  SATURDAY_DAY
//	Sat     18-21  SATURDAY_EVENING
//	Sun      6-17  SUNDAY_DAY
//	Sun     18-21  SUNDAY_EVENING
var All = []TimeSlot{
	{
		ID: WorkdayMorningRush, Name: "WORKDAY_MORNING_RUSH",
		MinWeekday: time.Monday, MaxWeekday: time.Friday,
		MinHour: 6, MaxHour: 8,
	},
	{
		ID: WorkdayMidday, Name: "WORKDAY_MIDDAY",
		MinWeekday: time.Monday, MaxWeekday: time.Friday,
		MinHour: 9, MaxHour: 15,
	},
	{
		ID: WorkdayAfternoonRush, Name: "WORKDAY_AFTERNOON_RUSH",
		MinWeekday: time.Monday, MaxWeekday: time.Friday,
		MinHour: 16, MaxHour: 18,
	},
	{
		ID: WorkdayEvening, Name: "WORKDAY_EVENING",
		MinWeekday: time.Monday, MaxWeekday: time.Friday,
		MinHour: 19, MaxHour: 21,
	},
	{
		ID: WorkdayNight, Name: "WORKDAY_NIGHT",
		MinWeekday: time.Monday, MaxWeekday: time.Thursday,
		MinHour: 22, MaxHour: 5,
	},
	{
		ID: NightBeforeWeekday, Name: "NIGHT_BEFORE_WEEKDAY",
		MinWeekday: time.Sunday, MaxWeekday: time.Sunday,
		MinHour: 22, MaxHour: 5,
	},
	{
		ID: NightBeforeWeekendDay, Name: "NIGHT_BEFORE_WEEKEND_DAY",
		MinWeekday: time.Friday, MaxWeekday: time.Saturday,
		MinHour: 22, MaxHour: 5,
	},
	{
		ID: SaturdayDay, Name: "SATURDAY_DAY",
		MinWeekday: time.Saturday, MaxWeekday: time.Saturday,
		MinHour: 6, MaxHour: 17,
	},
	{
		ID: SaturdayEvening, Name: "SATURDAY_EVENING",
		MinWeekday: time.Saturday, MaxWeekday: time.Saturday,
		MinHour: 18, MaxHour: 21,
	},
	{
		ID: SundayDay, Name: "SUNDAY_DAY",
		MinWeekday: time.Sunday, MaxWeekday: time.Sunday,
		MinHour: 6, MaxHour: 17,
	},
	{
		ID: SundayEvening, Name: "SUNDAY_EVENING",
		MinWeekday: time.Sunday, MaxWeekday: time.Sunday,
		MinHour: 18, MaxHour: 21,
	},
}

// dayInRange reports whether wd falls within [min, max], wrapping across
// the week boundary when min > max.
func dayInRange(wd, min, max time.Weekday) bool {
	if min <= max {
		return wd >= min && wd <= max
	}
	return wd >= min || wd <= max
}

// hourInRange reports whether hour falls within [min, max], wrapping past
// midnight when min > max.
func hourInRange(hour, min, max int) bool {
	if min <= max {
		return hour >= min && hour <= max
	}
	return hour >= min || hour <= max
}

// Matches reports whether slot covers the weekday and hour of at.
func (s TimeSlot) Matches(at time.Time) bool {
	if s.isDefault {
		return true
	}
	return dayInRange(at.Weekday(), s.MinWeekday, s.MaxWeekday) &&
		hourInRange(at.Hour(), s.MinHour, s.MaxHour)
}

// SlotFor returns the first canonical slot whose day-range and hour-range
// both cover at's weekday and hour. The 11 slots are defined to form a
// total partition, so failing to find a match is a programmer error, not a
// runtime condition worth a recoverable error return.
func SlotFor(at time.Time) TimeSlot {
	for _, s := range All {
		if s.Matches(at) {
			return s
		}
	}
	panic("timeslot: no canonical slot matched " + at.String() + "; All no longer forms a total partition")
}
