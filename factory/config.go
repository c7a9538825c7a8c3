/*
Package factory provides JSON to Go schedule-configuration conversion.

PURPOSE:
  Converts the admin-editable JSON document (savings goal, contribution
  rate rules, calendar revisions) into schedule.RuleSet and
  schedule.CalendarPolicy values. This enables configuration changes
  without code changes - the admin UI edits JSON, the factory builds the
  proper Go structs.

JSON SCHEMA:
  {
    "goal": 5000,
    "contribution_rules": [
      {"effective_date": "2025-11-17", "amount": 10},
      {"effective_date": "2025-12-01", "amount": 20}
    ],
    "calendar": [
      {"excluded_weekdays": ["sunday", "monday", "friday"]},
      {"effective_from": "2025-11-17", "excluded_weekdays": ["sunday", "friday"]}
    ]
  }

DEFAULTS:
  - Missing or empty contribution_rules: built-in default rule set
  - Missing calendar: the default calendar history
  - Missing goal: 5000

SEE ALSO:
  - schedule/rules.go, schedule/calendar.go: The types being built
  - api/handlers.go: Settings endpoints exchanging this JSON
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// JSON TYPES
// =============================================================================

// ScheduleConfigJSON is the wire form of the fund configuration.
type ScheduleConfigJSON struct {
	Goal              float64                `json:"goal"`
	ContributionRules []RuleJSON             `json:"contribution_rules"`
	Calendar          []CalendarRevisionJSON `json:"calendar,omitempty"`
}

// RuleJSON is one rate rule on the wire.
type RuleJSON struct {
	EffectiveDate string  `json:"effective_date"`
	Amount        float64 `json:"amount"`
}

// CalendarRevisionJSON is one calendar revision on the wire. An empty
// effective_from marks the base revision covering all earlier history.
type CalendarRevisionJSON struct {
	EffectiveFrom    string   `json:"effective_from,omitempty"`
	ExcludedWeekdays []string `json:"excluded_weekdays"`
}

// =============================================================================
// PARSED CONFIG
// =============================================================================

// ScheduleConfig is the validated, engine-ready configuration.
type ScheduleConfig struct {
	Goal     decimal.Decimal
	Rules    schedule.RuleSet
	RuleList []schedule.Rule
	Policy   schedule.CalendarPolicy
}

// Calculator returns a balance calculator for this configuration.
func (c *ScheduleConfig) Calculator() fund.Calculator {
	return fund.Calculator{Policy: c.Policy, Rules: c.Rules}
}

// Settings converts the config to the storable settings document.
func (c *ScheduleConfig) Settings() fund.Settings {
	return fund.Settings{Goal: c.Goal, Rules: c.RuleList, Calendar: c.Policy.Revisions()}
}

// DefaultScheduleConfig returns the built-in configuration.
func DefaultScheduleConfig() *ScheduleConfig {
	return &ScheduleConfig{
		Goal:     decimal.NewFromInt(5000),
		Rules:    schedule.DefaultRules(),
		RuleList: schedule.DefaultRules().Rules(),
		Policy:   schedule.DefaultCalendarPolicy(),
	}
}

// FromSettings builds a config from a stored settings document. Empty rules
// or calendar fall back to the built-in defaults.
func FromSettings(s fund.Settings) *ScheduleConfig {
	rules := s.Rules
	if len(rules) == 0 {
		rules = schedule.DefaultRules().Rules()
	}
	return &ScheduleConfig{
		Goal:     s.Goal,
		Rules:    schedule.NewRuleSet(rules),
		RuleList: rules,
		Policy:   s.Policy(),
	}
}

// =============================================================================
// PARSING
// =============================================================================

// ErrInvalidConfig is the sentinel wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid schedule config")

// ConfigError pinpoints the field that failed validation. Index is -1 for
// document-level failures.
type ConfigError struct {
	Field   string
	Index   int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(field string, index int, format string, args ...any) error {
	return &ConfigError{Field: field, Index: index, Message: fmt.Sprintf(format, args...)}
}

// ParseScheduleConfig validates and converts a JSON document.
func ParseScheduleConfig(data []byte) (*ScheduleConfig, error) {
	var raw ScheduleConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, configErr("document", -1, "%v", err)
	}
	return BuildScheduleConfig(raw)
}

// BuildScheduleConfig converts an already-decoded document.
func BuildScheduleConfig(raw ScheduleConfigJSON) (*ScheduleConfig, error) {
	cfg := DefaultScheduleConfig()

	if raw.Goal < 0 {
		return nil, configErr("goal", -1, "must not be negative, got %v", raw.Goal)
	}
	if raw.Goal > 0 {
		cfg.Goal = decimal.NewFromFloat(raw.Goal)
	}

	if len(raw.ContributionRules) > 0 {
		rules := make([]schedule.Rule, 0, len(raw.ContributionRules))
		for i, r := range raw.ContributionRules {
			d, err := schedule.ParseDate(r.EffectiveDate)
			if err != nil {
				return nil, configErr("contribution_rules", i, "%v", err)
			}
			if r.Amount <= 0 {
				return nil, configErr("contribution_rules", i, "amount must be positive, got %v", r.Amount)
			}
			rules = append(rules, schedule.Rule{EffectiveDate: d, Amount: decimal.NewFromFloat(r.Amount)})
		}
		cfg.Rules = schedule.NewRuleSet(rules)
		cfg.RuleList = rules
	}

	if len(raw.Calendar) > 0 {
		revisions := make([]schedule.PolicyRevision, 0, len(raw.Calendar))
		for i, rev := range raw.Calendar {
			var from schedule.Date
			if rev.EffectiveFrom != "" {
				var err error
				if from, err = schedule.ParseDate(rev.EffectiveFrom); err != nil {
					return nil, configErr("calendar", i, "%v", err)
				}
			}
			excluded, err := parseWeekdays(rev.ExcludedWeekdays)
			if err != nil {
				return nil, configErr("calendar", i, "%v", err)
			}
			revisions = append(revisions, schedule.PolicyRevision{EffectiveFrom: from, Excluded: excluded})
		}
		cfg.Policy = schedule.NewCalendarPolicy(revisions)
	}

	return cfg, nil
}

// ToJSON converts a config back to its wire form.
func (c *ScheduleConfig) ToJSON() ScheduleConfigJSON {
	goal, _ := c.Goal.Float64()
	out := ScheduleConfigJSON{Goal: goal}

	for _, r := range c.RuleList {
		amount, _ := r.Amount.Float64()
		out.ContributionRules = append(out.ContributionRules, RuleJSON{
			EffectiveDate: r.EffectiveDate.String(),
			Amount:        amount,
		})
	}

	for _, rev := range c.Policy.Revisions() {
		j := CalendarRevisionJSON{ExcludedWeekdays: formatWeekdays(rev.Excluded)}
		if !rev.EffectiveFrom.IsZero() {
			j.EffectiveFrom = rev.EffectiveFrom.String()
		}
		out.Calendar = append(out.Calendar, j)
	}
	return out
}

// =============================================================================
// WEEKDAY NAMES
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		out = append(out, wd)
	}
	return out, nil
}

func formatWeekdays(days []time.Weekday) []string {
	out := make([]string, len(days))
	for i, wd := range days {
		out[i] = strings.ToLower(wd.String())
	}
	return out
}
