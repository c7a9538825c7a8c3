/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Populates the store with realistic data for demos and manual testing.
  Each scenario creates members, contributions, and settings that
  demonstrate a specific feature of the engine.

AVAILABLE SCENARIOS:
  founding-roster: The six founding members with their first two weeks of
                   payments, including a few missed days
  rate-change:     One member paying across the 2025-12-01 rate increase
  streak-runner:   A member with a long unbroken streak and one with a gap

NOTE:
  Scenarios add to whatever is already stored; run them against a fresh
  database. Only use in development.
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "founding-roster",
		Name:        "Founding Roster",
		Description: "Six members from 2025-11-04 with two weeks of payments and a few gaps",
	},
	{
		ID:          "rate-change",
		Name:        "Rate Change",
		Description: "One member paying across the December rate increase (10 to 20)",
	},
	{
		ID:          "streak-runner",
		Name:        "Streak Runner",
		Description: "A member with a long unbroken streak next to one with a gap",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario populates the store with the named scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "founding-roster":
		err = h.loadFoundingRoster(r.Context())
	case "rate-change":
		err = h.loadRateChange(r.Context())
	case "streak-runner":
		err = h.loadStreakRunner(r.Context())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}

	if errors.Is(err, fund.ErrDuplicateID) {
		writeError(w, http.StatusConflict, "Scenario already loaded", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedMember(ctx context.Context, id, name string, join schedule.Date) error {
	return h.Store.CreateMember(ctx, fund.Member{
		ID:       fund.MemberID(id),
		Name:     name,
		JoinDate: join,
	})
}

func (h *Handler) seedPayment(ctx context.Context, id, memberID string, d schedule.Date, amount int64) error {
	return h.Store.AddContribution(ctx, fund.Contribution{
		ID:       fund.ContributionID(id),
		MemberID: fund.MemberID(memberID),
		Date:     d,
		Amount:   decimal.NewFromInt(amount),
	})
}

// loadFoundingRoster mirrors the fund's actual first two weeks: everyone
// paid the first three days, then a few members started missing.
func (h *Handler) loadFoundingRoster(ctx context.Context) error {
	join := schedule.MustParseDate("2025-11-04")
	names := []string{"Margaux", "Lorraine", "Raineer", "Deign", "Jv", "Bryan"}

	for i, name := range names {
		if err := h.seedMember(ctx, fmt.Sprintf("m%d", i+1), name, join); err != nil {
			return err
		}
	}

	// Who paid on which early contribution days.
	payments := map[string][]string{
		"2025-11-04": {"m1", "m2", "m3", "m4", "m5", "m6"},
		"2025-11-05": {"m1", "m2", "m3", "m4", "m5", "m6"},
		"2025-11-06": {"m1", "m2", "m3", "m4", "m5", "m6"},
		"2025-11-08": {"m1", "m3", "m4", "m6"},
		"2025-11-11": {"m1", "m3", "m4", "m6"},
		"2025-11-12": {"m1", "m3", "m4", "m6"},
		"2025-11-13": {"m1", "m3", "m4", "m6"},
	}

	n := 0
	for dateStr, memberIDs := range payments {
		d := schedule.MustParseDate(dateStr)
		for _, id := range memberIDs {
			n++
			if err := h.seedPayment(ctx, fmt.Sprintf("c%d", n), id, d, 10); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadRateChange seeds one member paying the resolved rate every
// contribution day across the December increase.
func (h *Handler) loadRateChange(ctx context.Context) error {
	join := schedule.MustParseDate("2025-11-24")
	if err := h.seedMember(ctx, "rc1", "Margaux", join); err != nil {
		return err
	}

	rules := schedule.DefaultRules()
	end := schedule.MustParseDate("2025-12-06")
	n := 0
	for d := join; d.BeforeOrEqual(end); d = d.Next() {
		if !schedule.IsContributionDay(d) {
			continue
		}
		n++
		amount := rules.ResolveAmount(d)
		if err := h.Store.AddContribution(ctx, fund.Contribution{
			ID:       fund.ContributionID(fmt.Sprintf("rc-c%d", n)),
			MemberID: "rc1",
			Date:     d,
			Amount:   amount,
		}); err != nil {
			return err
		}
	}
	return nil
}

// loadStreakRunner seeds a perfect payer and a payer with one missed day.
func (h *Handler) loadStreakRunner(ctx context.Context) error {
	join := schedule.MustParseDate("2025-11-17")
	end := schedule.MustParseDate("2025-12-06")

	if err := h.seedMember(ctx, "sr1", "Raineer", join); err != nil {
		return err
	}
	if err := h.seedMember(ctx, "sr2", "Bryan", join); err != nil {
		return err
	}

	gap := schedule.MustParseDate("2025-11-27")
	n := 0
	for d := join; d.BeforeOrEqual(end); d = d.Next() {
		if !schedule.IsContributionDay(d) {
			continue
		}
		n++
		if err := h.seedPayment(ctx, fmt.Sprintf("sr-a%d", n), "sr1", d, 10); err != nil {
			return err
		}
		if d.Equal(gap) {
			continue // Bryan missed this one
		}
		if err := h.seedPayment(ctx, fmt.Sprintf("sr-b%d", n), "sr2", d, 10); err != nil {
			return err
		}
	}
	return nil
}
