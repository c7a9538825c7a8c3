package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
	"github.com/lagoon/fund-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedMember(t *testing.T, s *sqlite.Store, id, name string, join schedule.Date) {
	t.Helper()
	require.NoError(t, s.CreateMember(context.Background(), fund.Member{
		ID:       fund.MemberID(id),
		Name:     name,
		JoinDate: join,
	}))
}

func TestSQLite_MemberRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Margaux", join)

	got, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Margaux", got.Name)
	assert.True(t, got.JoinDate.Equal(join))

	members, err := store.ListMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(members))

	// Unknown member resolves to nil, not an error.
	missing, err := store.GetMember(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_DuplicateMemberID_Rejected(t *testing.T) {
	store := newTestStore(t)
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Margaux", join)

	err := store.CreateMember(context.Background(), fund.Member{ID: "m1", Name: "Imposter", JoinDate: join})
	assert.ErrorIs(t, err, fund.ErrDuplicateID)
}

func TestSQLite_DeleteMember_CascadesContributions(t *testing.T) {
	// GIVEN: A member with recorded payments
	// WHEN: Deleting the member
	// THEN: Their contributions disappear too

	store := newTestStore(t)
	ctx := context.Background()
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Margaux", join)

	require.NoError(t, store.AddContribution(ctx, fund.Contribution{
		ID: "c1", MemberID: "m1", Date: join, Amount: decimal.NewFromInt(10),
	}))

	require.NoError(t, store.DeleteMember(ctx, "m1"))

	contributions, err := store.ListContributions(ctx)
	require.NoError(t, err)
	assert.Empty(t, contributions)

	assert.ErrorIs(t, store.DeleteMember(ctx, "m1"), fund.ErrMemberNotFound)
}

func TestSQLite_Contribution_UnknownMember_Rejected(t *testing.T) {
	store := newTestStore(t)

	err := store.AddContribution(context.Background(), fund.Contribution{
		ID: "c1", MemberID: "ghost",
		Date:   schedule.NewDate(2025, time.November, 4),
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, fund.ErrMemberNotFound)
}

func TestSQLite_ContributionUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Raineer", join)

	c := fund.Contribution{ID: "c1", MemberID: "m1", Date: join, Amount: decimal.NewFromInt(10)}
	require.NoError(t, store.AddContribution(ctx, c))

	c.Amount = decimal.NewFromInt(20)
	c.Date = join.Next()
	require.NoError(t, store.UpdateContribution(ctx, c))

	got, err := store.GetContribution(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Date.Equal(join.Next()))

	require.NoError(t, store.DeleteContribution(ctx, "c1"))
	assert.ErrorIs(t, store.DeleteContribution(ctx, "c1"), fund.ErrContributionNotFound)
	assert.ErrorIs(t, store.UpdateContribution(ctx, c), fund.ErrContributionNotFound)
}

func TestSQLite_ListMemberContributions_OrderedByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Deign", join)
	seedMember(t, store, "m2", "Jv", join)

	require.NoError(t, store.AddContribution(ctx, fund.Contribution{
		ID: "c2", MemberID: "m1", Date: join.AddDays(2), Amount: decimal.NewFromInt(10)}))
	require.NoError(t, store.AddContribution(ctx, fund.Contribution{
		ID: "c1", MemberID: "m1", Date: join, Amount: decimal.NewFromInt(10)}))
	require.NoError(t, store.AddContribution(ctx, fund.Contribution{
		ID: "c3", MemberID: "m2", Date: join, Amount: decimal.NewFromInt(10)}))

	got, err := store.ListMemberContributions(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, 2, len(got))
	assert.Equal(t, fund.ContributionID("c1"), got[0].ID)
	assert.Equal(t, fund.ContributionID("c2"), got[1].ID)
}

func TestSQLite_ListContributionsInRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Lorraine", join)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AddContribution(ctx, fund.Contribution{
			ID:       fund.ContributionID(fmt.Sprintf("c%d", i)),
			MemberID: "m1",
			Date:     join.AddDays(i),
			Amount:   decimal.NewFromInt(10),
		}))
	}

	got, err := store.ListContributionsInRange(ctx, join.AddDays(1), join.AddDays(3))
	require.NoError(t, err)
	require.Equal(t, 3, len(got))
	assert.True(t, got[0].Date.Equal(join.AddDays(1)))
	assert.True(t, got[2].Date.Equal(join.AddDays(3)))
}

func TestSQLite_Settings_DefaultsThenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Fresh database: built-in defaults.
	s, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, s.Goal.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 2, len(s.Rules))

	// Save and reload a custom configuration, calendar included.
	custom := fund.Settings{
		Goal: decimal.NewFromInt(7500),
		Rules: []schedule.Rule{
			{EffectiveDate: schedule.NewDate(2026, time.January, 1), Amount: decimal.NewFromInt(25)},
		},
		Calendar: []schedule.PolicyRevision{
			{Excluded: []time.Weekday{time.Wednesday}},
			{EffectiveFrom: schedule.NewDate(2026, time.February, 1), Excluded: []time.Weekday{time.Saturday}},
		},
	}
	require.NoError(t, store.SaveSettings(ctx, custom))

	s, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, s.Goal.Equal(decimal.NewFromInt(7500)))
	require.Equal(t, 1, len(s.Rules))
	assert.Equal(t, "2026-01-01", s.Rules[0].EffectiveDate.String())
	assert.True(t, s.Rules[0].Amount.Equal(decimal.NewFromInt(25)))

	require.Equal(t, 2, len(s.Calendar))
	assert.True(t, s.Calendar[0].EffectiveFrom.IsZero())
	assert.Equal(t, []time.Weekday{time.Wednesday}, s.Calendar[0].Excluded)
	assert.Equal(t, "2026-02-01", s.Calendar[1].EffectiveFrom.String())

	// The stored calendar drives day classification, not the built-in one.
	policy := s.Policy()
	assert.True(t, policy.IsContributionDay(schedule.NewDate(2025, time.November, 21)))
	assert.False(t, policy.IsContributionDay(schedule.NewDate(2025, time.November, 19)))
}

func TestSQLite_Snapshots_UpsertAndRangeQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	join := schedule.NewDate(2025, time.November, 4)
	seedMember(t, store, "m1", "Bryan", join)

	day := schedule.NewDate(2025, time.November, 10)
	snap := fund.BalanceSnapshot{
		MemberID: "m1", AsOf: day,
		Expected:    decimal.NewFromInt(40),
		Paid:        decimal.NewFromInt(30),
		Outstanding: decimal.NewFromInt(10),
		Streak:      3,
	}
	require.NoError(t, store.SaveSnapshots(ctx, []fund.BalanceSnapshot{snap}))

	// Rewriting the same day overwrites rather than duplicating.
	snap.Paid = decimal.NewFromInt(40)
	snap.Outstanding = decimal.Zero
	require.NoError(t, store.SaveSnapshots(ctx, []fund.BalanceSnapshot{snap}))

	got, err := store.ListSnapshots(ctx, "m1", day.AddDays(-1), day.AddDays(1))
	require.NoError(t, err)
	require.Equal(t, 1, len(got))
	assert.True(t, got[0].Outstanding.IsZero())
	assert.Equal(t, 3, got[0].Streak)
}
