package schedule_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lagoon/fund-engine/schedule"
)

func rate(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func twoRules() schedule.RuleSet {
	return schedule.NewRuleSet([]schedule.Rule{
		{EffectiveDate: schedule.NewDate(2025, time.November, 17), Amount: rate(10)},
		{EffectiveDate: schedule.NewDate(2025, time.December, 1), Amount: rate(20)},
	})
}

// =============================================================================
// RESOLUTION - Latest rule <= date wins
// =============================================================================

func TestRules_ResolveAmount_WithinFirstRuleInterval(t *testing.T) {
	// GIVEN: Rules [{2025-11-17, 10}, {2025-12-01, 20}]
	// WHEN: Resolving 2025-11-20
	// THEN: The first rule is still in effect

	got := twoRules().ResolveAmount(schedule.NewDate(2025, time.November, 20))
	assert.True(t, got.Equal(rate(10)), "got %s", got)
}

func TestRules_ResolveAmount_AfterSecondRule(t *testing.T) {
	// WHEN: Resolving 2025-12-05
	// THEN: The second rule has superseded the first

	got := twoRules().ResolveAmount(schedule.NewDate(2025, time.December, 5))
	assert.True(t, got.Equal(rate(20)), "got %s", got)
}

func TestRules_ResolveAmount_OnEffectiveDate_RuleApplies(t *testing.T) {
	// Effective dates are inclusive.

	rs := twoRules()
	assert.True(t, rs.ResolveAmount(schedule.NewDate(2025, time.November, 17)).Equal(rate(10)))
	assert.True(t, rs.ResolveAmount(schedule.NewDate(2025, time.December, 1)).Equal(rate(20)))
}

func TestRules_ResolveAmount_BeforeAllRules_FallbackRate(t *testing.T) {
	// GIVEN: A date preceding every rule
	// THEN: The baseline rate (10) applies

	got := twoRules().ResolveAmount(schedule.NewDate(2025, time.November, 1))
	assert.True(t, got.Equal(rate(10)), "got %s", got)
}

func TestRules_ResolveAmount_EmptySet_UsesBuiltInDefaults(t *testing.T) {
	// GIVEN: No rules supplied at all
	// THEN: Resolution falls back to the built-in default rule set

	var empty schedule.RuleSet
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.ResolveAmount(schedule.NewDate(2025, time.December, 5)).Equal(rate(20)))
	assert.True(t, empty.ResolveAmount(schedule.NewDate(2025, time.November, 20)).Equal(rate(10)))
}

func TestRules_DuplicateEffectiveDates_LastSuppliedWins(t *testing.T) {
	// GIVEN: Two rules sharing an effective date
	// THEN: Resolution is deterministic - the rule supplied last wins

	day := schedule.NewDate(2025, time.November, 17)
	rs := schedule.NewRuleSet([]schedule.Rule{
		{EffectiveDate: day, Amount: rate(10)},
		{EffectiveDate: day, Amount: rate(15)},
	})
	assert.True(t, rs.ResolveAmount(day).Equal(rate(15)))
}

func TestRules_NewRuleSet_SortsAndCopies(t *testing.T) {
	// GIVEN: Rules supplied out of order
	// THEN: The set orders them and does not alias the caller's slice

	input := []schedule.Rule{
		{EffectiveDate: schedule.NewDate(2025, time.December, 1), Amount: rate(20)},
		{EffectiveDate: schedule.NewDate(2025, time.November, 17), Amount: rate(10)},
	}
	rs := schedule.NewRuleSet(input)

	ordered := rs.Rules()
	assert.Equal(t, 2, len(ordered))
	assert.True(t, ordered[0].EffectiveDate.Before(ordered[1].EffectiveDate))

	// Mutating the caller's slice must not affect the set.
	input[0].Amount = rate(999)
	assert.True(t, rs.ResolveAmount(schedule.NewDate(2025, time.December, 5)).Equal(rate(20)))
}
