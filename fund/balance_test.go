package fund_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func amt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func defaultCalc() fund.Calculator {
	return fund.NewCalculator(schedule.DefaultRules())
}

func member(id, name string, joinDate schedule.Date) fund.Member {
	return fund.Member{ID: fund.MemberID(id), Name: name, JoinDate: joinDate}
}

func payment(id, memberID string, d schedule.Date, amount int64) fund.Contribution {
	return fund.Contribution{
		ID:       fund.ContributionID(id),
		MemberID: fund.MemberID(memberID),
		Date:     d,
		Amount:   amt(amount),
	}
}

// payEveryContributionDay records one payment per contribution day in
// [from, to] at the rate in force that day.
func payEveryContributionDay(memberID string, from, to schedule.Date, rules schedule.RuleSet) []fund.Contribution {
	var out []fund.Contribution
	for d := from; d.BeforeOrEqual(to); d = d.Next() {
		if !schedule.IsContributionDay(d) {
			continue
		}
		out = append(out, fund.Contribution{
			ID:       fund.ContributionID(d.String()),
			MemberID: fund.MemberID(memberID),
			Date:     d,
			Amount:   rules.ResolveAmount(d),
		})
	}
	return out
}

// =============================================================================
// MEMBER BALANCE
// =============================================================================

func TestBalance_NoContributions_FullyOutstanding(t *testing.T) {
	// GIVEN: A member with zero recorded payments and a join date in the past
	// THEN: The balance equals the full expected total

	calc := defaultCalc()
	m := member("m1", "Margaux", schedule.NewDate(2025, time.November, 4))
	today := schedule.NewDate(2025, time.November, 8)

	b := calc.MemberBalance(m, nil, today)

	assert.Equal(t, 4, b.ContributionDays)
	assert.True(t, b.Expected.Equal(amt(40)), "got %s", b.Expected)
	assert.True(t, b.Paid.IsZero())
	assert.True(t, b.Outstanding.Equal(b.Expected))
	assert.False(t, b.IsSettled())
}

func TestBalance_FullyPaid_Settled(t *testing.T) {
	// GIVEN: A payment on every contribution day at the resolved rate
	// THEN: Outstanding is zero

	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.December, 10)
	m := member("m1", "Margaux", join)
	contributions := payEveryContributionDay("m1", join, today, calc.Rules)

	b := calc.MemberBalance(m, contributions, today)

	assert.True(t, b.Outstanding.IsZero(), "got %s", b.Outstanding)
	assert.True(t, b.IsSettled())
}

func TestBalance_FutureJoinDate_NoObligation(t *testing.T) {
	// A member who joins tomorrow owes nothing today.

	calc := defaultCalc()
	today := schedule.NewDate(2025, time.November, 10)
	m := member("m1", "Jv", today.AddDays(1))

	b := calc.MemberBalance(m, nil, today)

	assert.Equal(t, 0, b.ContributionDays)
	assert.True(t, b.Expected.IsZero())
	assert.True(t, b.IsSettled())
}

func TestBalance_Overpayment_NegativeOutstanding(t *testing.T) {
	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.November, 8) // expected 40
	m := member("m1", "Bryan", join)
	contributions := []fund.Contribution{payment("c1", "m1", join, 100)}

	b := calc.MemberBalance(m, contributions, today)

	assert.True(t, b.Outstanding.Equal(amt(-60)), "got %s", b.Outstanding)
	assert.True(t, b.IsSettled())
}

func TestBalance_OtherMembersPaymentsIgnored(t *testing.T) {
	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.November, 8)
	m := member("m1", "Deign", join)
	contributions := []fund.Contribution{payment("c1", "m2", join, 40)}

	b := calc.MemberBalance(m, contributions, today)
	assert.True(t, b.Outstanding.Equal(amt(40)))
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummarize_OutstandingSumsPositiveBalancesOnly(t *testing.T) {
	// GIVEN: One member fully paid ahead, one who paid nothing
	// THEN: The overpayment does not offset the debtor's balance

	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.November, 8) // expected 40 each
	members := []fund.Member{
		member("m1", "Margaux", join),
		member("m2", "Lorraine", join),
	}
	contributions := []fund.Contribution{payment("c1", "m1", join, 100)}

	s := calc.Summarize(members, contributions, amt(5000), today)

	assert.True(t, s.TotalContributions.Equal(amt(100)))
	assert.True(t, s.OutstandingTotal.Equal(amt(40)), "got %s", s.OutstandingTotal)
	assert.Equal(t, 2, len(s.Members))
	assert.True(t, s.Members[0].Balance.Outstanding.Equal(amt(-60)))
	assert.True(t, s.Members[1].Balance.Outstanding.Equal(amt(40)))
}

func TestSummarize_GoalProgress(t *testing.T) {
	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.November, 8)
	members := []fund.Member{member("m1", "Raineer", join)}
	contributions := []fund.Contribution{payment("c1", "m1", join, 250)}

	s := calc.Summarize(members, contributions, amt(5000), today)
	assert.True(t, s.GoalProgress.Equal(decimal.NewFromFloat(0.05)), "got %s", s.GoalProgress)

	// Zero goal: progress stays zero instead of dividing by zero.
	s = calc.Summarize(members, contributions, decimal.Zero, today)
	assert.True(t, s.GoalProgress.IsZero())
}

// =============================================================================
// STREAK VIA CALCULATOR
// =============================================================================

func TestCalculatorStreak_PaidThroughYesterday(t *testing.T) {
	// Paid every contribution day from join through yesterday, nothing
	// today -> streak equals the day count through yesterday.

	calc := defaultCalc()
	join := schedule.NewDate(2025, time.November, 4)
	today := schedule.NewDate(2025, time.November, 20)
	m := member("m1", "Margaux", join)
	contributions := payEveryContributionDay("m1", join, today.Prev(), calc.Rules)

	want := schedule.CountContributionDays(join, today.Prev())
	assert.Equal(t, want, calc.Streak(m, contributions, today))
}

// =============================================================================
// INDEXING HELPERS
// =============================================================================

func TestPaidDates_DuplicateSameDateCollapses(t *testing.T) {
	d := schedule.NewDate(2025, time.November, 4)
	contributions := []fund.Contribution{
		payment("c1", "m1", d, 10),
		payment("c2", "m1", d, 5),
		payment("c3", "m2", d, 10),
	}

	paid := fund.PaidDates("m1", contributions)
	assert.Equal(t, 1, paid.Len())
	assert.True(t, paid.Contains(d))

	// Amounts still sum regardless of the date collapsing.
	assert.True(t, fund.TotalPaid("m1", contributions).Equal(amt(15)))
}
