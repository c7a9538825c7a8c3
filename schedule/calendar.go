/*
calendar.go - Contribution-day classification

PURPOSE:
  Decides whether a calendar date counts as a contribution day. The
  weekday-exclusion set is itself time-versioned: the fund has changed
  which weekdays are "off" once already, and the policy type is built
  to absorb further changes without touching the calculation code.

POLICY MODEL:
  A CalendarPolicy is an ordered list of revisions. Each revision names
  the weekdays that do NOT collect contributions, effective from a given
  date until superseded by the next revision. The revision active for a
  date D is the one with the latest EffectiveFrom <= D. The first
  revision has a zero EffectiveFrom and covers all earlier history.

DEFAULT POLICY:
  Until 2025-11-16:  no contributions on Sunday, Monday, Friday
  From 2025-11-17:   no contributions on Sunday, Friday
                     (Mondays joined the schedule on the cutover day itself)

EDGE CASES:
  - The cutover comparison is date-only (midnight UTC); a Date can never
    carry a time-of-day, so the cutover day itself always uses the new set.
  - Revisions with equal effective dates: the later one in the list wins,
    same as rate rules.

SEE ALSO:
  - rules.go: The same latest-rule-wins lookup for contribution rates
  - accumulate.go: Walks date ranges using this classifier
*/
package schedule

import (
	"sort"
	"time"
)

// =============================================================================
// CALENDAR POLICY - Time-versioned weekday exclusions
// =============================================================================

// PolicyRevision is one version of the weekday-exclusion set, effective
// from EffectiveFrom (inclusive) until the next revision begins.
type PolicyRevision struct {
	EffectiveFrom Date
	Excluded      []time.Weekday
}

func (r PolicyRevision) excludes(wd time.Weekday) bool {
	for _, e := range r.Excluded {
		if e == wd {
			return true
		}
	}
	return false
}

// CalendarPolicy is the full revision history of the contribution calendar.
type CalendarPolicy struct {
	revisions []PolicyRevision
}

// NewCalendarPolicy builds a policy from revisions. Revisions are sorted
// ascending by effective date; the sort is stable so a duplicate effective
// date resolves to the revision supplied last.
func NewCalendarPolicy(revisions []PolicyRevision) CalendarPolicy {
	sorted := make([]PolicyRevision, len(revisions))
	copy(sorted, revisions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	return CalendarPolicy{revisions: sorted}
}

// mondayCutover is the day Mondays became contribution days.
var mondayCutover = NewDate(2025, time.November, 17)

// DefaultCalendarPolicy returns the fund's calendar history: Sundays and
// Fridays never collect; Mondays stopped being excluded on 2025-11-17.
func DefaultCalendarPolicy() CalendarPolicy {
	return NewCalendarPolicy([]PolicyRevision{
		{Excluded: []time.Weekday{time.Sunday, time.Monday, time.Friday}},
		{EffectiveFrom: mondayCutover, Excluded: []time.Weekday{time.Sunday, time.Friday}},
	})
}

// Revisions returns the ordered revision history.
func (p CalendarPolicy) Revisions() []PolicyRevision {
	out := make([]PolicyRevision, len(p.revisions))
	copy(out, p.revisions)
	return out
}

// revisionFor returns the revision active on d: the latest revision whose
// effective date is <= d. Scans backward; revision counts are tiny.
func (p CalendarPolicy) revisionFor(d Date) (PolicyRevision, bool) {
	for i := len(p.revisions) - 1; i >= 0; i-- {
		if p.revisions[i].EffectiveFrom.BeforeOrEqual(d) {
			return p.revisions[i], true
		}
	}
	return PolicyRevision{}, false
}

// IsContributionDay reports whether members are expected to pay on d.
// A date before every revision (possible only with a custom policy whose
// first revision has a non-zero effective date) is not a contribution day.
func (p CalendarPolicy) IsContributionDay(d Date) bool {
	rev, ok := p.revisionFor(d)
	if !ok {
		return false
	}
	return !rev.excludes(d.Weekday())
}

// IsContributionDay classifies d under the default calendar policy.
func IsContributionDay(d Date) bool {
	return DefaultCalendarPolicy().IsContributionDay(d)
}
