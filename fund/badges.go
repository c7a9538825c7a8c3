/*
badges.go - Lightweight gamification

PURPOSE:
  Awards display badges from the same derived numbers the dashboard
  already computes. Badges are recomputed on demand, never stored.

BADGES:
  Super Streak: 7+ day contribution streak (wins over On Fire)
  On Fire:      3+ day contribution streak
  Reliable:     paid at least the full expected total (and something was due)
  Newcomer:     joined within the last 7 days
*/
package fund

import "github.com/lagoon/fund-engine/schedule"

// Badge is a display-only award.
type Badge struct {
	ID          string
	Name        string
	Icon        string
	Description string
}

var (
	BadgeOnFire = Badge{
		ID: "on_fire", Name: "On Fire", Icon: "🔥",
		Description: "3+ day contribution streak!",
	}
	BadgeSuperStreak = Badge{
		ID: "super_streak", Name: "Super Streak", Icon: "⚡",
		Description: "7+ day contribution streak!",
	}
	BadgeReliable = Badge{
		ID: "reliable", Name: "Reliable", Icon: "💎",
		Description: "100% contribution rate",
	}
	BadgeNewcomer = Badge{
		ID: "newcomer", Name: "Newcomer", Icon: "👶",
		Description: "Joined in the last 7 days",
	}
)

// MemberBadges returns the badges a member has earned as of today.
func (c Calculator) MemberBadges(m Member, contributions []Contribution, today schedule.Date) []Badge {
	var badges []Badge

	streak := c.Streak(m, contributions, today)
	switch {
	case streak >= 7:
		badges = append(badges, BadgeSuperStreak)
	case streak >= 3:
		badges = append(badges, BadgeOnFire)
	}

	b := c.MemberBalance(m, contributions, today)
	if b.Expected.IsPositive() && b.Paid.GreaterThanOrEqual(b.Expected) {
		badges = append(badges, BadgeReliable)
	}

	if m.JoinDate.AfterOrEqual(today.AddDays(-7)) {
		badges = append(badges, BadgeNewcomer)
	}

	return badges
}
