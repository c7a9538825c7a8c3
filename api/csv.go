/*
csv.go - CSV export and import of contribution records

PURPOSE:
  Bulk data exchange with spreadsheets, matching the format the fund's
  members already keep: one line per payment, "Date,Member Name,Amount".

IMPORT SEMANTICS:
  - Member names are matched case-insensitively against the roster.
  - Unknown names create a new member whose join date is the date of
    their first imported contribution.
  - A payment for a (member, date) pair that already exists is skipped,
    so re-importing the same file is idempotent.
  - Malformed lines are counted and skipped, never fatal.
*/
package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// ExportCSV streams contributions as "Date,Member Name,Amount". Optional
// from/to query parameters bound the export to an inclusive date range.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}
	from, to, bounded, err := exportBounds(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	var contributions []fund.Contribution
	if bounded {
		contributions, err = h.Store.ListContributionsInRange(r.Context(), from, to)
	} else {
		contributions, err = h.Store.ListContributions(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contributions", err)
		return
	}

	names := make(map[fund.MemberID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="contributions.csv"`)

	cw := csv.NewWriter(w)
	for _, c := range contributions {
		amount, _ := c.Amount.Float64()
		record := []string{
			c.Date.String(),
			names[c.MemberID],
			strconv.FormatFloat(amount, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return
		}
	}
	cw.Flush()
}

// ImportCSV ingests "Date,Member Name,Amount" lines from the request body.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}
	contributions, err := h.Store.ListContributions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contributions", err)
		return
	}

	byName := make(map[string]fund.MemberID, len(members))
	for _, m := range members {
		byName[strings.ToLower(m.Name)] = m.ID
	}
	seen := make(map[string]bool, len(contributions))
	for _, c := range contributions {
		seen[dayKey(c.MemberID, c.Date)] = true
	}

	cr := csv.NewReader(r.Body)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var result ImportResultDTO
	ctx := r.Context()

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.LinesSkipped++
			continue
		}
		if len(record) != 3 {
			result.LinesSkipped++
			continue
		}

		date, derr := schedule.ParseDate(strings.TrimSpace(record[0]))
		name := strings.TrimSpace(record[1])
		amount, aerr := decimal.NewFromString(strings.TrimSpace(record[2]))
		if derr != nil || aerr != nil || name == "" || !amount.IsPositive() {
			result.LinesSkipped++
			continue
		}

		memberID, ok := byName[strings.ToLower(name)]
		if !ok {
			// New name: create the member, join date = first imported payment.
			m := fund.Member{
				ID:       fund.MemberID(uuid.NewString()),
				Name:     name,
				JoinDate: date,
			}
			if err := h.Store.CreateMember(ctx, m); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to create member", err)
				return
			}
			memberID = m.ID
			byName[strings.ToLower(name)] = memberID
			result.MembersCreated++
		}

		if seen[dayKey(memberID, date)] {
			continue
		}

		c := fund.Contribution{
			ID:       fund.ContributionID(uuid.NewString()),
			MemberID: memberID,
			Date:     date,
			Amount:   amount,
		}
		if err := h.Store.AddContribution(ctx, c); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to add contribution", err)
			return
		}
		seen[dayKey(memberID, date)] = true
		result.ContributionsImported++
	}

	writeJSON(w, http.StatusOK, result)
}

func dayKey(id fund.MemberID, d schedule.Date) string {
	return fmt.Sprintf("%s|%s", id, d)
}

// exportBounds reads the optional from/to query parameters. A missing bound
// defaults to the open end of the range.
func exportBounds(r *http.Request) (from, to schedule.Date, bounded bool, err error) {
	q := r.URL.Query()
	fromStr, toStr := q.Get("from"), q.Get("to")
	if fromStr == "" && toStr == "" {
		return from, to, false, nil
	}

	from = schedule.NewDate(1, time.January, 1)
	to = schedule.NewDate(9999, time.December, 31)
	if fromStr != "" {
		if from, err = schedule.ParseDate(fromStr); err != nil {
			return from, to, false, err
		}
	}
	if toStr != "" {
		if to, err = schedule.ParseDate(toStr); err != nil {
			return from, to, false, err
		}
	}
	return from, to, true, nil
}
