package mechanics

import "fmt"

// World clock granularity: each resolved turn advances in-game time by
// ten minutes.
const (
	MinutesPerTurn = 10
	minutesPerDay  = 24 * 60
)

var periods = []struct {
	start, end int
	name       string
}{
	{5, 8, "dawn"},
	{8, 12, "morning"},
	{12, 14, "midday"},
	{14, 17, "afternoon"},
	{17, 20, "evening"},
	{20, 23, "night"},
	// late_night wraps 23-5
}

// AdvanceClock moves the world clock forward by turns turns.
func AdvanceClock(currentMinutes, turns int) int {
	return currentMinutes + turns*MinutesPerTurn
}

// ClockDay is the 1-based in-game day number.
func ClockDay(totalMinutes int) int {
	return totalMinutes/minutesPerDay + 1
}

// ClockHour is the hour of day, 0-23.
func ClockHour(totalMinutes int) int {
	return (totalMinutes % minutesPerDay) / 60
}

// ClockPeriod names the current stretch of the day.
func ClockPeriod(totalMinutes int) string {
	hour := ClockHour(totalMinutes)
	for _, p := range periods {
		if hour >= p.start && hour < p.end {
			return p.name
		}
	}
	return "late_night"
}

// IsDaytime is true between 06:00 and 20:00.
func IsDaytime(totalMinutes int) bool {
	hour := ClockHour(totalMinutes)
	return hour >= 6 && hour < 20
}

// FormatClock renders the clock like "morning, day 2 (08:30)".
func FormatClock(totalMinutes int) string {
	return fmt.Sprintf("%s, day %d (%02d:%02d)",
		ClockPeriod(totalMinutes),
		ClockDay(totalMinutes),
		ClockHour(totalMinutes),
		totalMinutes%60,
	)
}
