package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// DEFAULT POLICY - Weekday exclusions on either side of the cutover
// =============================================================================

func TestCalendar_MondayBeforeCutover_NotContributionDay(t *testing.T) {
	// GIVEN: The default calendar, a Monday before 2025-11-17
	// WHEN: Classifying 2025-11-10
	// THEN: Not a contribution day (old set excludes Mondays)

	monday := schedule.NewDate(2025, time.November, 10)
	assert.False(t, schedule.IsContributionDay(monday))
}

func TestCalendar_MondayOnCutover_ContributionDay(t *testing.T) {
	// GIVEN: The cutover day itself, 2025-11-17, which is a Monday
	// WHEN: Classifying it
	// THEN: Contribution day - the cutover date uses the new set

	cutover := schedule.NewDate(2025, time.November, 17)
	assert.Equal(t, time.Monday, cutover.Weekday())
	assert.True(t, schedule.IsContributionDay(cutover))
}

func TestCalendar_DefaultPolicy_WeekBeforeCutover(t *testing.T) {
	// GIVEN: The week of 2025-11-03, entirely under the old exclusion set
	// THEN: Sun/Mon/Fri are off, Tue/Wed/Thu/Sat collect

	cases := []struct {
		day  int
		want bool
	}{
		{2, false},  // Sunday
		{3, false},  // Monday
		{4, true},   // Tuesday
		{5, true},   // Wednesday
		{6, true},   // Thursday
		{7, false},  // Friday
		{8, true},   // Saturday
	}
	for _, tc := range cases {
		d := schedule.NewDate(2025, time.November, tc.day)
		assert.Equal(t, tc.want, schedule.IsContributionDay(d),
			"2025-11-%02d (%s)", tc.day, d.Weekday())
	}
}

func TestCalendar_DefaultPolicy_WeekAfterCutover(t *testing.T) {
	// GIVEN: The week starting at the cutover, under the new exclusion set
	// THEN: Only Sun/Fri are off; Monday now collects

	cases := []struct {
		day  int
		want bool
	}{
		{17, true},  // Monday (newly a contribution day)
		{18, true},  // Tuesday
		{19, true},  // Wednesday
		{20, true},  // Thursday
		{21, false}, // Friday
		{22, true},  // Saturday
		{23, false}, // Sunday
	}
	for _, tc := range cases {
		d := schedule.NewDate(2025, time.November, tc.day)
		assert.Equal(t, tc.want, schedule.IsContributionDay(d),
			"2025-11-%02d (%s)", tc.day, d.Weekday())
	}
}

// =============================================================================
// CUSTOM POLICIES
// =============================================================================

func TestCalendar_CustomPolicy_DuplicateEffectiveDate_LastWins(t *testing.T) {
	// GIVEN: Two revisions with the same effective date
	// WHEN: Classifying a date on or after it
	// THEN: The revision supplied last is the one in effect

	from := schedule.NewDate(2025, time.January, 1)
	policy := schedule.NewCalendarPolicy([]schedule.PolicyRevision{
		{EffectiveFrom: from, Excluded: []time.Weekday{time.Saturday}},
		{EffectiveFrom: from, Excluded: []time.Weekday{time.Wednesday}},
	})

	saturday := schedule.NewDate(2025, time.January, 4)
	wednesday := schedule.NewDate(2025, time.January, 8)
	assert.True(t, policy.IsContributionDay(saturday), "first revision should be superseded")
	assert.False(t, policy.IsContributionDay(wednesday), "last revision should be in effect")
}

func TestCalendar_CustomPolicy_BeforeFirstRevision_NotContributionDay(t *testing.T) {
	// GIVEN: A policy whose first revision starts 2025-06-01
	// WHEN: Classifying an earlier date
	// THEN: No revision applies, so no obligation

	policy := schedule.NewCalendarPolicy([]schedule.PolicyRevision{
		{EffectiveFrom: schedule.NewDate(2025, time.June, 1), Excluded: nil},
	})
	assert.False(t, policy.IsContributionDay(schedule.NewDate(2025, time.May, 31)))
	assert.True(t, policy.IsContributionDay(schedule.NewDate(2025, time.June, 1)))
}
