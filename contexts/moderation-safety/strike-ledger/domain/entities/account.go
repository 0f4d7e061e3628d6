package entities

import "time"

const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleFounder = "founder"
)

// IsPrivilegedRole reports whether a role may run administrative trust actions.
func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleFounder
}

// BanRecord is the suspension state embedded in the user account.
// A nil BanUntil means the ban is permanent.
type BanRecord struct {
	IsBanned bool
	Reason   string
	BanUntil *time.Time
	BannedAt *time.Time
}

func (b BanRecord) IsPermanent() bool {
	return b.IsBanned && b.BanUntil == nil
}

// IsExpired reports a temporary ban whose end date has passed. Such a ban is
// still in force until the expiry sweep clears it.
func (b BanRecord) IsExpired(now time.Time) bool {
	return b.IsBanned && b.BanUntil != nil && b.BanUntil.Before(now)
}

type UserAccount struct {
	UserID    string
	Role      string
	Ban       BanRecord
	UpdatedAt time.Time
}
