package domain

import "time"

// TimeRemaining is the countdown shown next to a listing. When Ended is
// true the breakdown fields are zero; otherwise they carry the floor
// day/hour/minute split of the time left. Negative values are never
// produced.
type TimeRemaining struct {
	Ended   bool `json:"ended"`
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
}

// Countdown breaks the interval between now and endsAt into whole days,
// hours and minutes. Partial minutes are truncated, never rounded up. Pure,
// so it is safe to recompute on every UI tick.
func Countdown(now, endsAt time.Time) TimeRemaining {
	diff := endsAt.Sub(now)
	if diff <= 0 {
		return TimeRemaining{Ended: true}
	}
	return TimeRemaining{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int((diff % (24 * time.Hour)) / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
	}
}

// DaysUntil counts the calendar days left before endsAt, rounding partial
// days up and clamping at zero. The win-prediction scorer keys its time
// pressure and competition density off this figure, so an auction closing
// in 36 hours still counts as 2 days of runway.
func DaysUntil(now, endsAt time.Time) int {
	diff := endsAt.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
