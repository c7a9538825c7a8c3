/*
streak.go - Consecutive-contribution-day streaks

PURPOSE:
  Computes the unbroken run of paid contribution days ending today,
  walking backward from a caller-supplied "today". Non-contribution days
  are transparent: they neither extend nor break a streak.

TODAY SEMANTICS:
  Today is still open, so an unpaid today is neutral: it does not extend
  the streak and it does not break one earned through yesterday. A paid
  today extends. Every *completed* contribution day must be paid or the
  walk stops there. (The original behavior never distinguished "not yet
  due today" from "missed today"; this code resolves it as
  open-day-neutral, which is the generous reading.)

TERMINATION:
  The walk is a bounded loop, never recursion. It stops at the first
  missed completed contribution day, and unconditionally at either a
  ten-year iteration cap or the fund's floor year, whichever comes first.
*/
package schedule

// Termination bounds for the backward walk.
const (
	// maxStreakLookback caps the walk at roughly ten years of days.
	maxStreakLookback = 3650

	// streakFloorYear is the year the fund started; no payment can
	// predate it, so the walk never goes earlier.
	streakFloorYear = 2024
)

// CalculateStreak returns the streak ending at today under the default
// calendar policy. paid is the set of dates with a recorded payment.
func CalculateStreak(today Date, paid DateSet) int {
	return CalculateStreakWithPolicy(DefaultCalendarPolicy(), today, paid)
}

// CalculateStreakWithPolicy returns the count of consecutive contribution
// days with a recorded payment, walking backward from today.
func CalculateStreakWithPolicy(policy CalendarPolicy, today Date, paid DateSet) int {
	streak := 0

	// Today extends the streak if paid, but an unpaid today is neutral:
	// the day is not over yet, so the walk continues into yesterday
	// either way.
	if policy.IsContributionDay(today) && paid.Contains(today) {
		streak++
	}

	d := today.Prev()
	for i := 0; i < maxStreakLookback; i++ {
		if d.Year() < streakFloorYear {
			break
		}
		if policy.IsContributionDay(d) {
			if !paid.Contains(d) {
				break
			}
			streak++
		}
		d = d.Prev()
	}
	return streak
}
