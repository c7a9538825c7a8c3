// Package fund holds the group-fund domain: members, their recorded
// contributions, and the balance and gamification calculations built on the
// schedule engine.
package fund

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MemberID string
type ContributionID string

// =============================================================================
// ENTITIES
// =============================================================================

// Member is a participant in the fund. JoinDate fixes the left edge of
// every expectation calculation for the member.
type Member struct {
	ID        MemberID
	Name      string
	JoinDate  schedule.Date
	CreatedAt time.Time
}

// Contribution is a single recorded payment, day granularity. The engine
// treats a member's contributions as an unordered set indexed by date.
type Contribution struct {
	ID       ContributionID
	MemberID MemberID
	Date     schedule.Date
	Amount   decimal.Decimal
}

// Settings is the admin-editable fund configuration: the savings goal, the
// contribution-rate history, and the calendar revisions. Rules and Calendar
// may be empty, in which case the engine's built-in defaults apply.
type Settings struct {
	Goal     decimal.Decimal
	Rules    []schedule.Rule
	Calendar []schedule.PolicyRevision
}

// DefaultSettings returns the configuration used when the store has none.
func DefaultSettings() Settings {
	return Settings{
		Goal:     decimal.NewFromInt(5000),
		Rules:    schedule.DefaultRules().Rules(),
		Calendar: schedule.DefaultCalendarPolicy().Revisions(),
	}
}

// RuleSet returns the settings' rules as a resolvable set.
func (s Settings) RuleSet() schedule.RuleSet {
	return schedule.NewRuleSet(s.Rules)
}

// Policy returns the settings' calendar, falling back to the built-in
// history when no revisions are stored.
func (s Settings) Policy() schedule.CalendarPolicy {
	if len(s.Calendar) == 0 {
		return schedule.DefaultCalendarPolicy()
	}
	return schedule.NewCalendarPolicy(s.Calendar)
}

// =============================================================================
// CONTRIBUTION INDEXING
// =============================================================================

// PaidDates builds the date-presence index for one member, the lookup the
// streak walk needs. Duplicate same-date payments collapse to one entry.
func PaidDates(memberID MemberID, contributions []Contribution) schedule.DateSet {
	paid := schedule.NewDateSet()
	for _, c := range contributions {
		if c.MemberID == memberID {
			paid.Add(c.Date)
		}
	}
	return paid
}

// TotalPaid sums one member's recorded payments.
func TotalPaid(memberID MemberID, contributions []Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		if c.MemberID == memberID {
			total = total.Add(c.Amount)
		}
	}
	return total
}
