/*
balance.go - Member balances and fund-wide summaries

PURPOSE:
  Derives everything the dashboard shows from the three stored entity
  types plus "today": per-member expected totals, outstanding balances,
  streaks, and the fund-wide rollup against the savings goal.

BALANCE:
  balance = expected(joinDate..today) - sum(recorded payments)
  Positive means owed; zero or negative means the member is up to date
  (possibly ahead). The fund-wide outstanding figure sums only the
  positive balances - one member's overpayment never offsets another's
  debt.

All calculations are pure functions of their inputs. "Today" is always an
explicit argument so tests and the API can pin it.
*/
package fund

import (
	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// BALANCE CALCULATOR
// =============================================================================

// Calculator bundles the calendar policy and rate rules a balance run uses.
// The zero value is not useful; construct with NewCalculator.
type Calculator struct {
	Policy schedule.CalendarPolicy
	Rules  schedule.RuleSet
}

// NewCalculator returns a calculator for the given rules under the default
// calendar policy.
func NewCalculator(rules schedule.RuleSet) Calculator {
	return Calculator{Policy: schedule.DefaultCalendarPolicy(), Rules: rules}
}

// Balance is one member's reconciliation against the expected schedule.
type Balance struct {
	MemberID MemberID
	AsOf     schedule.Date

	// ContributionDays elapsed from the join date through AsOf.
	ContributionDays int

	// Expected is the cumulative amount owed over those days.
	Expected decimal.Decimal

	// Paid is the sum of recorded payments.
	Paid decimal.Decimal

	// Outstanding is Expected - Paid. Positive = owed.
	Outstanding decimal.Decimal
}

// IsSettled reports whether the member owes nothing.
func (b Balance) IsSettled() bool { return !b.Outstanding.IsPositive() }

// MemberBalance reconciles one member as of today.
func (c Calculator) MemberBalance(m Member, contributions []Contribution, today schedule.Date) Balance {
	exp := schedule.AccumulateWithPolicy(c.Policy, m.JoinDate, today, c.Rules)
	paid := TotalPaid(m.ID, contributions)
	return Balance{
		MemberID:         m.ID,
		AsOf:             today,
		ContributionDays: exp.Days,
		Expected:         exp.ExpectedTotal,
		Paid:             paid,
		Outstanding:      exp.ExpectedTotal.Sub(paid),
	}
}

// Streak returns the member's consecutive-contribution-day streak ending
// today.
func (c Calculator) Streak(m Member, contributions []Contribution, today schedule.Date) int {
	return schedule.CalculateStreakWithPolicy(c.Policy, today, PaidDates(m.ID, contributions))
}

// =============================================================================
// FUND SUMMARY
// =============================================================================

// MemberSummary is one row of the fund rollup.
type MemberSummary struct {
	Member  Member
	Balance Balance
	Streak  int
}

// Summary is the fund-wide rollup the dashboard renders.
type Summary struct {
	AsOf schedule.Date

	// TotalContributions is the sum of every recorded payment.
	TotalContributions decimal.Decimal

	// OutstandingTotal sums the positive member balances only.
	OutstandingTotal decimal.Decimal

	Goal         decimal.Decimal
	GoalProgress decimal.Decimal // TotalContributions / Goal, 0 when Goal is 0

	Members []MemberSummary
}

// Summarize computes the rollup for all members as of today. Member order
// is preserved from the input.
func (c Calculator) Summarize(members []Member, contributions []Contribution, goal decimal.Decimal, today schedule.Date) Summary {
	s := Summary{
		AsOf:               today,
		TotalContributions: decimal.Zero,
		OutstandingTotal:   decimal.Zero,
		Goal:               goal,
		GoalProgress:       decimal.Zero,
		Members:            make([]MemberSummary, 0, len(members)),
	}

	for _, c2 := range contributions {
		s.TotalContributions = s.TotalContributions.Add(c2.Amount)
	}

	for _, m := range members {
		b := c.MemberBalance(m, contributions, today)
		if b.Outstanding.IsPositive() {
			s.OutstandingTotal = s.OutstandingTotal.Add(b.Outstanding)
		}
		s.Members = append(s.Members, MemberSummary{
			Member:  m,
			Balance: b,
			Streak:  c.Streak(m, contributions, today),
		})
	}

	if goal.IsPositive() {
		s.GoalProgress = s.TotalContributions.Div(goal)
	}
	return s
}
