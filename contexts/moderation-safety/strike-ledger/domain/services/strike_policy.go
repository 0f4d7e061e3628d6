package services

import (
	"fmt"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
)

const (
	DefaultBanThreshold   = 3
	DefaultBanDurationDay = 7
)

// StrikePolicy decides when active warnings in one category escalate into an
// automatic timed ban.
type StrikePolicy struct {
	Threshold   int
	BanDuration time.Duration
}

func (p StrikePolicy) threshold() int {
	if p.Threshold <= 0 {
		return DefaultBanThreshold
	}
	return p.Threshold
}

func (p StrikePolicy) banDuration() time.Duration {
	if p.BanDuration <= 0 {
		return DefaultBanDurationDay * 24 * time.Hour
	}
	return p.BanDuration
}

func (p StrikePolicy) EffectiveThreshold() int {
	return p.threshold()
}

func (p StrikePolicy) BanDays() int {
	days := int(p.banDuration() / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// Evaluate takes the strike count including the warning being recorded and
// the account's current ban. It returns the ban to apply and whether one
// applies. A permanent ban is never replaced by a timed one, and a timed ban
// is only ever extended.
func (p StrikePolicy) Evaluate(
	strikeCount int,
	category entities.WarningCategory,
	current entities.BanRecord,
	now time.Time,
) (entities.BanRecord, bool) {
	if strikeCount < p.threshold() {
		return entities.BanRecord{}, false
	}
	if current.IsPermanent() {
		return entities.BanRecord{}, false
	}

	until := now.UTC().Add(p.banDuration())
	if current.IsBanned && current.BanUntil != nil && current.BanUntil.After(until) {
		until = current.BanUntil.UTC()
	}
	bannedAt := now.UTC()
	return entities.BanRecord{
		IsBanned: true,
		Reason:   AutoBanReason(p.BanDays(), p.threshold(), category),
		BanUntil: &until,
		BannedAt: &bannedAt,
	}, true
}

func AutoBanReason(days int, threshold int, category entities.WarningCategory) string {
	return fmt.Sprintf("Automatic %d-day ban: %d warnings for %s", days, threshold, category)
}

// WarningNotice is the lesser notice sent while the user is below the threshold.
func (p StrikePolicy) WarningNotice(strikeCount int, category entities.WarningCategory) string {
	return fmt.Sprintf("You have %d/%d warnings for %s. Reaching %d results in an automatic %d-day suspension.",
		strikeCount, p.threshold(), category, p.threshold(), p.BanDays())
}
