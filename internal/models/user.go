package models

import "time"

// User is a SkillSwap account synced from the identity provider.
// total_credits is the authoritative spendable balance; credits_earned and
// credits_spent are independent running counters, not a derivation source.
type User struct {
	ID            uint64    `db:"id"`
	ExternalID    string    `db:"external_id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	AvatarURL     string    `db:"avatar_url"`
	TotalCredits  int64     `db:"total_credits"`
	CreditsEarned int64     `db:"credits_earned"`
	CreditsSpent  int64     `db:"credits_spent"`
	SkillCoins    int64     `db:"skill_coins"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Notification types form a closed set.
const (
	NotificationTypeWelcome = "welcome"
	NotificationTypeCredit  = "credit"
	NotificationTypeDebit   = "debit"
	NotificationTypeCourse  = "course"
)

// Notification is one entry of a user's append-only message feed.
type Notification struct {
	ID        uint64    `db:"id"`
	UserID    uint64    `db:"user_id"`
	Message   string    `db:"message"`
	Type      string    `db:"type"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

// Profile is the user view returned to clients.
type Profile struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	AvatarURL     string   `json:"avatar_url"`
	TotalCredits  int64    `json:"total_credits"`
	CreditsEarned int64    `json:"credits_earned"`
	CreditsSpent  int64    `json:"credits_spent"`
	SkillCoins    int64    `json:"skill_coins"`
	Skills        []string `json:"skills"`
}
