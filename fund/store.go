/*
store.go - Persistence interfaces for the fund domain

PURPOSE:
  Defines the narrow interface between the calculation layer and whatever
  backs it. The engine never does I/O itself; it consumes already-loaded
  member, contribution, and rule collections. The Store is the seam
  the API layer loads them through.

IMPLEMENTATIONS:
  - fund/store:  In-memory, for tests and development
  - store/sqlite: SQLite-backed, for production

CASCADE:
  Deleting a member deletes the member's contributions. That ownership
  lives here in the storage contract, not in the calculation core.
*/
package fund

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrMemberNotFound is returned when a referenced member doesn't exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrContributionNotFound is returned when a referenced contribution
	// doesn't exist.
	ErrContributionNotFound = errors.New("contribution not found")

	// ErrDuplicateID is returned when creating an entity whose ID is taken.
	ErrDuplicateID = errors.New("duplicate id")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence seam for members, contributions, and settings.
type Store interface {
	// Members. DeleteMember cascades to the member's contributions.
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id MemberID) (*Member, error)
	CreateMember(ctx context.Context, m Member) error
	DeleteMember(ctx context.Context, id MemberID) error

	// Contributions. Range endpoints are inclusive.
	ListContributions(ctx context.Context) ([]Contribution, error)
	ListContributionsInRange(ctx context.Context, from, to schedule.Date) ([]Contribution, error)
	ListMemberContributions(ctx context.Context, id MemberID) ([]Contribution, error)
	GetContribution(ctx context.Context, id ContributionID) (*Contribution, error)
	AddContribution(ctx context.Context, c Contribution) error
	UpdateContribution(ctx context.Context, c Contribution) error
	DeleteContribution(ctx context.Context, id ContributionID) error

	// Settings. LoadSettings returns DefaultSettings when none are stored.
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// BalanceSnapshot is a stored point-in-time balance row, written by the
// background snapshot scheduler for the dashboard's history view.
type BalanceSnapshot struct {
	MemberID    MemberID
	AsOf        schedule.Date
	Expected    decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	Streak      int
}

// SnapshotStore persists daily balance snapshots. Writing the same
// (member, day) twice overwrites; recomputation is idempotent.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, snaps []BalanceSnapshot) error
	ListSnapshots(ctx context.Context, id MemberID, from, to schedule.Date) ([]BalanceSnapshot, error)
}
