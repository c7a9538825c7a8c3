/*
accumulate.go - Expected-contribution accumulation over a date range

PURPOSE:
  Walks a date range day by day and answers two questions at once:
  how many contribution days have elapsed, and how much a member was
  expected to pay over them. The two are always consistent: the total
  is exactly the sum of the per-day resolved rates over the days counted.

GUARANTEES:
  - Both endpoints inclusive.
  - start > end returns a zero Expectation, not an error. A member whose
    join date is in the future simply has no obligation yet.
  - For fixed rules, ExpectedTotal is monotonic in the end date, and
    totals are additive across any partition of the range.

COST:
  Linear in days in the range times a short rule scan. Fund lifetimes
  are a few years and rule sets a handful of entries, so recomputing on
  every request is cheap and there is no caching layer.
*/
package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// EXPECTATION
// =============================================================================

// Expectation is the result of accumulating over a date range.
type Expectation struct {
	// Days is the number of contribution days in the range.
	Days int

	// ExpectedTotal is the cumulative amount owed over those days.
	ExpectedTotal decimal.Decimal
}

// Accumulate computes the expectation for [start, end] under the default
// calendar policy.
func Accumulate(start, end Date, rules RuleSet) Expectation {
	return AccumulateWithPolicy(DefaultCalendarPolicy(), start, end, rules)
}

// AccumulateWithPolicy computes the expectation for [start, end] under an
// explicit calendar policy. Rates are resolved per day, so a rule change
// mid-range is priced correctly on either side of its effective date.
func AccumulateWithPolicy(policy CalendarPolicy, start, end Date, rules RuleSet) Expectation {
	exp := Expectation{ExpectedTotal: decimal.Zero}
	if start.After(end) {
		return exp
	}

	for d := start; d.BeforeOrEqual(end); d = d.Next() {
		if !policy.IsContributionDay(d) {
			continue
		}
		exp.Days++
		exp.ExpectedTotal = exp.ExpectedTotal.Add(rules.ResolveAmount(d))
	}
	return exp
}

// FlatExpectation prices every contribution day in [start, end] at a single
// flat rate instead of resolving per-day rules.
//
// Deprecated: this is the legacy balance display from before rates were
// date-versioned. Kept only for compatibility with balances recorded under
// the flat scheme; new code should use Accumulate.
func FlatExpectation(start, end Date, flat decimal.Decimal) Expectation {
	exp := AccumulateWithPolicy(DefaultCalendarPolicy(), start, end, RuleSet{rules: []Rule{{Amount: flat}}})
	return exp
}

// CountContributionDays returns only the day count for [start, end] under
// the default policy.
func CountContributionDays(start, end Date) int {
	return Accumulate(start, end, DefaultRules()).Days
}
