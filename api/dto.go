/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract: amounts travel as
  float64 on the wire while remaining decimal.Decimal internally, and
  dates travel as YYYY-MM-DD strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/lagoon/fund-engine/factory"
	"github.com/lagoon/fund-engine/fund"
)

// =============================================================================
// MEMBERS
// =============================================================================

type MemberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JoinDate  string `json:"join_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateMemberRequest struct {
	Name     string `json:"name"`
	JoinDate string `json:"join_date"` // empty = today
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

type ContributionDTO struct {
	ID       string  `json:"id"`
	MemberID string  `json:"member_id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
}

type CreateContributionRequest struct {
	MemberID string  `json:"member_id"`
	Date     string  `json:"date"` // empty = today
	Amount   float64 `json:"amount"`
}

type UpdateContributionRequest struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// =============================================================================
// BALANCES AND SUMMARIES
// =============================================================================

type BalanceDTO struct {
	MemberID         string  `json:"member_id"`
	AsOf             string  `json:"as_of"`
	ContributionDays int     `json:"contribution_days"`
	ExpectedTotal    float64 `json:"expected_total"`
	TotalPaid        float64 `json:"total_paid"`
	Outstanding      float64 `json:"outstanding"`
	Settled          bool    `json:"settled"`
}

type StreakDTO struct {
	MemberID string `json:"member_id"`
	AsOf     string `json:"as_of"`
	Streak   int    `json:"streak"`
}

type BadgeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type MemberSummaryDTO struct {
	Member  MemberDTO  `json:"member"`
	Balance BalanceDTO `json:"balance"`
	Streak  int        `json:"streak"`
}

type SummaryDTO struct {
	AsOf               string             `json:"as_of"`
	TotalContributions float64            `json:"total_contributions"`
	OutstandingTotal   float64            `json:"outstanding_total"`
	Goal               float64            `json:"goal"`
	GoalProgress       float64            `json:"goal_progress"`
	Members            []MemberSummaryDTO `json:"members"`
}

type SnapshotDTO struct {
	MemberID    string  `json:"member_id"`
	AsOf        string  `json:"as_of"`
	Expected    float64 `json:"expected"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
	Streak      int     `json:"streak"`
}

// =============================================================================
// SETTINGS / SCENARIOS / IMPORT
// =============================================================================

// SettingsDTO is the factory wire document, unchanged.
type SettingsDTO = factory.ScheduleConfigJSON

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ImportResultDTO struct {
	ContributionsImported int `json:"contributions_imported"`
	MembersCreated        int `json:"members_created"`
	LinesSkipped          int `json:"lines_skipped"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toMemberDTO(m fund.Member) MemberDTO {
	dto := MemberDTO{
		ID:       string(m.ID),
		Name:     m.Name,
		JoinDate: m.JoinDate.String(),
	}
	if !m.CreatedAt.IsZero() {
		dto.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toContributionDTO(c fund.Contribution) ContributionDTO {
	amount, _ := c.Amount.Float64()
	return ContributionDTO{
		ID:       string(c.ID),
		MemberID: string(c.MemberID),
		Date:     c.Date.String(),
		Amount:   amount,
	}
}

func toBalanceDTO(b fund.Balance) BalanceDTO {
	expected, _ := b.Expected.Float64()
	paid, _ := b.Paid.Float64()
	outstanding, _ := b.Outstanding.Float64()
	return BalanceDTO{
		MemberID:         string(b.MemberID),
		AsOf:             b.AsOf.String(),
		ContributionDays: b.ContributionDays,
		ExpectedTotal:    expected,
		TotalPaid:        paid,
		Outstanding:      outstanding,
		Settled:          b.IsSettled(),
	}
}

func toBadgeDTOs(badges []fund.Badge) []BadgeDTO {
	out := make([]BadgeDTO, len(badges))
	for i, b := range badges {
		out[i] = BadgeDTO{ID: b.ID, Name: b.Name, Icon: b.Icon, Description: b.Description}
	}
	return out
}

func toSummaryDTO(s fund.Summary) SummaryDTO {
	total, _ := s.TotalContributions.Float64()
	outstanding, _ := s.OutstandingTotal.Float64()
	goal, _ := s.Goal.Float64()
	progress, _ := s.GoalProgress.Float64()

	dto := SummaryDTO{
		AsOf:               s.AsOf.String(),
		TotalContributions: total,
		OutstandingTotal:   outstanding,
		Goal:               goal,
		GoalProgress:       progress,
		Members:            make([]MemberSummaryDTO, len(s.Members)),
	}
	for i, ms := range s.Members {
		dto.Members[i] = MemberSummaryDTO{
			Member:  toMemberDTO(ms.Member),
			Balance: toBalanceDTO(ms.Balance),
			Streak:  ms.Streak,
		}
	}
	return dto
}

func toSnapshotDTO(s fund.BalanceSnapshot) SnapshotDTO {
	expected, _ := s.Expected.Float64()
	paid, _ := s.Paid.Float64()
	outstanding, _ := s.Outstanding.Float64()
	return SnapshotDTO{
		MemberID:    string(s.MemberID),
		AsOf:        s.AsOf.String(),
		Expected:    expected,
		Paid:        paid,
		Outstanding: outstanding,
		Streak:      s.Streak,
	}
}
