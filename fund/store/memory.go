// Package store provides an in-memory fund.Store implementation for tests
// and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	members       map[fund.MemberID]fund.Member
	memberOrder   []fund.MemberID
	contributions map[fund.ContributionID]fund.Contribution
	settings      *fund.Settings
	snapshots     map[snapKey]fund.BalanceSnapshot
}

type snapKey struct {
	MemberID fund.MemberID
	AsOf     string
}

func NewMemory() *Memory {
	return &Memory{
		members:       make(map[fund.MemberID]fund.Member),
		contributions: make(map[fund.ContributionID]fund.Contribution),
		snapshots:     make(map[snapKey]fund.BalanceSnapshot),
	}
}

var _ fund.Store = (*Memory)(nil)
var _ fund.SnapshotStore = (*Memory)(nil)

// =============================================================================
// MEMBERS
// =============================================================================

func (m *Memory) ListMembers(_ context.Context) ([]fund.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]fund.Member, 0, len(m.memberOrder))
	for _, id := range m.memberOrder {
		out = append(out, m.members[id])
	}
	return out, nil
}

func (m *Memory) GetMember(_ context.Context, id fund.MemberID) (*fund.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (m *Memory) CreateMember(_ context.Context, member fund.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.members[member.ID]; exists {
		return fund.ErrDuplicateID
	}
	m.members[member.ID] = member
	m.memberOrder = append(m.memberOrder, member.ID)
	return nil
}

func (m *Memory) DeleteMember(_ context.Context, id fund.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.members[id]; !exists {
		return fund.ErrMemberNotFound
	}
	delete(m.members, id)
	for i, mid := range m.memberOrder {
		if mid == id {
			m.memberOrder = append(m.memberOrder[:i], m.memberOrder[i+1:]...)
			break
		}
	}

	// Cascade: the member's contributions go too.
	for cid, c := range m.contributions {
		if c.MemberID == id {
			delete(m.contributions, cid)
		}
	}
	return nil
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

func (m *Memory) ListContributions(_ context.Context) ([]fund.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedContributions(func(fund.Contribution) bool { return true }), nil
}

func (m *Memory) ListContributionsInRange(_ context.Context, from, to schedule.Date) ([]fund.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedContributions(func(c fund.Contribution) bool {
		return c.Date.AfterOrEqual(from) && c.Date.BeforeOrEqual(to)
	}), nil
}

func (m *Memory) ListMemberContributions(_ context.Context, id fund.MemberID) ([]fund.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedContributions(func(c fund.Contribution) bool { return c.MemberID == id }), nil
}

// sortedContributions returns matching contributions ordered by date then ID,
// so listings are stable across runs. Callers hold the lock.
func (m *Memory) sortedContributions(match func(fund.Contribution) bool) []fund.Contribution {
	var out []fund.Contribution
	for _, c := range m.contributions {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) GetContribution(_ context.Context, id fund.ContributionID) (*fund.Contribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contributions[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) AddContribution(_ context.Context, c fund.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contributions[c.ID]; exists {
		return fund.ErrDuplicateID
	}
	if _, exists := m.members[c.MemberID]; !exists {
		return fund.ErrMemberNotFound
	}
	m.contributions[c.ID] = c
	return nil
}

func (m *Memory) UpdateContribution(_ context.Context, c fund.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contributions[c.ID]; !exists {
		return fund.ErrContributionNotFound
	}
	m.contributions[c.ID] = c
	return nil
}

func (m *Memory) DeleteContribution(_ context.Context, id fund.ContributionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contributions[id]; !exists {
		return fund.ErrContributionNotFound
	}
	delete(m.contributions, id)
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadSettings(_ context.Context) (fund.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return fund.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s fund.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &s
	return nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (m *Memory) SaveSnapshots(_ context.Context, snaps []fund.BalanceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range snaps {
		m.snapshots[snapKey{MemberID: s.MemberID, AsOf: s.AsOf.String()}] = s
	}
	return nil
}

func (m *Memory) ListSnapshots(_ context.Context, id fund.MemberID, from, to schedule.Date) ([]fund.BalanceSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []fund.BalanceSnapshot
	for _, s := range m.snapshots {
		if s.MemberID == id && s.AsOf.AfterOrEqual(from) && s.AsOf.BeforeOrEqual(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOf.Before(out[j].AsOf) })
	return out, nil
}
