/*
rules.go - Date-versioned contribution rates

PURPOSE:
  Resolves how much a member owes for a contribution day on a given date.
  The rate changes over time: each Rule carries an effective date and an
  amount, and the rule active "as of" any date D is the one with the
  latest effective date <= D. A rule's validity interval is implicit,
  ending where the next rule begins.

RESOLUTION:
  Rules are sorted ascending by effective date at construction (stable;
  two rules with the same effective date resolve to the one supplied
  last). Resolution scans backward from the latest rule - rule sets are
  tens of entries at most, so a linear scan is fine.

FALLBACKS:
  - Date precedes every rule: the baseline rate (10) applies.
  - No rules supplied at all: the built-in default rule set applies.

Rule sets are explicit parameters everywhere. There is deliberately no
package-level mutable rule list.
*/
package schedule

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULES
// =============================================================================

// Rule sets the per-contribution-day amount from EffectiveDate (inclusive)
// until superseded by a later rule.
type Rule struct {
	EffectiveDate Date
	Amount        decimal.Decimal
}

// RuleSet is an ordered, immutable collection of rate rules.
type RuleSet struct {
	rules []Rule
}

// fallbackRate is the baseline per-day amount used for dates that precede
// every rule in a set.
var fallbackRate = decimal.NewFromInt(10)

// NewRuleSet builds a RuleSet. The input is copied and stably sorted
// ascending by effective date, so duplicate effective dates resolve
// deterministically to the last rule supplied.
func NewRuleSet(rules []Rule) RuleSet {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})
	return RuleSet{rules: sorted}
}

// DefaultRules returns the built-in rate history, used whenever the
// settings store has no rules recorded.
func DefaultRules() RuleSet {
	return NewRuleSet([]Rule{
		{EffectiveDate: NewDate(2025, time.November, 17), Amount: decimal.NewFromInt(10)},
		{EffectiveDate: NewDate(2025, time.December, 1), Amount: decimal.NewFromInt(20)},
	})
}

// Rules returns the ordered rule list.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// IsEmpty reports whether the set has no rules.
func (rs RuleSet) IsEmpty() bool { return len(rs.rules) == 0 }

// ResolveAmount returns the per-day amount owed on d: the amount of the
// latest rule effective on or before d. An empty set defers to the
// built-in defaults; a date before every rule gets the baseline rate.
// Resolution is pure and deterministic.
func (rs RuleSet) ResolveAmount(d Date) decimal.Decimal {
	rules := rs.rules
	if len(rules) == 0 {
		rules = DefaultRules().rules
	}
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].EffectiveDate.BeforeOrEqual(d) {
			return rules[i].Amount
		}
	}
	return fallbackRate
}
