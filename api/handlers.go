/*
handlers.go - HTTP API handlers for the group-fund tracker

PURPOSE:
  Exposes the schedule engine via REST. Handlers load members,
  contributions, and settings through the fund.Store seam, hand them to
  the pure calculation layer, and serialize the results.

TIME:
  "Today" comes from the handler's Now hook (system clock by default,
  pinned in tests) and can be overridden per request with ?as_of=
  YYYY-MM-DD, which lets the UI replay any historical day.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate ID
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/factory"
	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     fund.Store
	Snapshots fund.SnapshotStore

	// Now supplies "today". Defaults to the system clock; tests pin it.
	Now func() schedule.Date
}

// NewHandler creates a handler over the given store.
func NewHandler(store fund.Store, snapshots fund.SnapshotStore) *Handler {
	return &Handler{
		Store:     store,
		Snapshots: snapshots,
		Now:       schedule.Today,
	}
}

// today resolves the reference date for a request: the as_of query
// parameter when present, the Now hook otherwise.
func (h *Handler) today(r *http.Request) (schedule.Date, error) {
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		return schedule.ParseDate(asOf)
	}
	return h.Now(), nil
}

// calculator loads the stored settings and builds the calculator and goal
// for a request.
func (h *Handler) calculator(r *http.Request) (fund.Calculator, decimal.Decimal, error) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		return fund.Calculator{}, decimal.Zero, err
	}
	cfg := factory.FromSettings(settings)
	return cfg.Calculator(), cfg.Goal, nil
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns the roster.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}

	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMember adds a member. Join date defaults to today.
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	joinDate := h.Now()
	if req.JoinDate != "" {
		var err error
		if joinDate, err = schedule.ParseDate(req.JoinDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid join date", err)
			return
		}
	}

	m := fund.Member{
		ID:       fund.MemberID(uuid.NewString()),
		Name:     req.Name,
		JoinDate: joinDate,
	}
	if err := h.Store.CreateMember(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create member", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTO(m))
}

// GetMember returns a single member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(*m))
}

// DeleteMember removes a member and, by cascade, their contributions.
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := fund.MemberID(chi.URLParam(r, "id"))

	err := h.Store.DeleteMember(r.Context(), id)
	if errors.Is(err, fund.ErrMemberNotFound) {
		writeError(w, http.StatusNotFound, "Member not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance reconciles one member against the expected schedule.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}
	calc, _, err := h.calculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	contributions, err := h.Store.ListMemberContributions(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load contributions", err)
		return
	}

	writeJSON(w, http.StatusOK, toBalanceDTO(calc.MemberBalance(*m, contributions, today)))
}

// GetStreak returns the member's current contribution streak.
func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}
	calc, _, err := h.calculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	contributions, err := h.Store.ListMemberContributions(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load contributions", err)
		return
	}

	writeJSON(w, http.StatusOK, StreakDTO{
		MemberID: string(m.ID),
		AsOf:     today.String(),
		Streak:   calc.Streak(*m, contributions, today),
	})
}

// GetBadges returns the member's earned badges.
func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}
	calc, _, err := h.calculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	contributions, err := h.Store.ListMemberContributions(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load contributions", err)
		return
	}

	writeJSON(w, http.StatusOK, toBadgeDTOs(calc.MemberBadges(*m, contributions, today)))
}

// ListMemberContributions returns one member's payments.
func (h *Handler) ListMemberContributions(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	contributions, err := h.Store.ListMemberContributions(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load contributions", err)
		return
	}

	dtos := make([]ContributionDTO, len(contributions))
	for i, c := range contributions {
		dtos[i] = toContributionDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListSnapshots returns stored balance snapshots for a member in a range.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMember(w, r)
	if !ok {
		return
	}
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}

	from := m.JoinDate
	if f := r.URL.Query().Get("from"); f != "" {
		if from, err = schedule.ParseDate(f); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}

	snaps, err := h.Snapshots.ListSnapshots(r.Context(), m.ID, from, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}

	dtos := make([]SnapshotDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toSnapshotDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) loadMember(w http.ResponseWriter, r *http.Request) (*fund.Member, bool) {
	id := fund.MemberID(chi.URLParam(r, "id"))

	m, err := h.Store.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get member", err)
		return nil, false
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Member not found", nil)
		return nil, false
	}
	return m, true
}

// =============================================================================
// CONTRIBUTION HANDLERS
// =============================================================================

// ListContributions returns every recorded payment.
func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.Store.ListContributions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contributions", err)
		return
	}

	dtos := make([]ContributionDTO, len(contributions))
	for i, c := range contributions {
		dtos[i] = toContributionDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateContribution records a payment. Date defaults to today.
func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	var req CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	date := h.Now()
	if req.Date != "" {
		var err error
		if date, err = schedule.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}

	c := fund.Contribution{
		ID:       fund.ContributionID(uuid.NewString()),
		MemberID: fund.MemberID(req.MemberID),
		Date:     date,
		Amount:   decimal.NewFromFloat(req.Amount),
	}

	err := h.Store.AddContribution(r.Context(), c)
	if errors.Is(err, fund.ErrMemberNotFound) {
		writeError(w, http.StatusNotFound, "Member not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add contribution", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionDTO(c))
}

// UpdateContribution edits a payment's date or amount.
func (h *Handler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	id := fund.ContributionID(chi.URLParam(r, "id"))

	existing, err := h.Store.GetContribution(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contribution", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Contribution not found", nil)
		return
	}

	var req UpdateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Date != "" {
		if existing.Date, err = schedule.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}
	if req.Amount != 0 {
		if req.Amount < 0 {
			writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
			return
		}
		existing.Amount = decimal.NewFromFloat(req.Amount)
	}

	if err := h.Store.UpdateContribution(r.Context(), *existing); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update contribution", err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionDTO(*existing))
}

// DeleteContribution removes a payment record.
func (h *Handler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	id := fund.ContributionID(chi.URLParam(r, "id"))

	err := h.Store.DeleteContribution(r.Context(), id)
	if errors.Is(err, fund.ErrContributionNotFound) {
		writeError(w, http.StatusNotFound, "Contribution not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete contribution", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARY
// =============================================================================

// GetSummary returns the fund-wide rollup.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}
	calc, goal, err := h.calculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
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

	writeJSON(w, http.StatusOK, toSummaryDTO(calc.Summarize(members, contributions, goal, today)))
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the current goal and rate rules.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.FromSettings(settings).ToJSON())
}

// UpdateSettings replaces the goal and rate rules.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := factory.BuildScheduleConfig(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	if err := h.Store.SaveSettings(r.Context(), cfg.Settings()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.ToJSON())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
