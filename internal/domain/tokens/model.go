package tokens

import "time"

// Token is the persisted half of a one-time secret. Only the hash of the raw
// secret is stored. (user_id, purpose) is unique: one live token per pair.
type Token struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     uint    `gorm:"not null;uniqueIndex:idx_tokens_user_purpose"`
	Purpose    Purpose `gorm:"type:varchar(32);not null;uniqueIndex:idx_tokens_user_purpose"`
	SecretHash string  `gorm:"type:char(64);not null;index"`
	CreatedAt  time.Time
	ExpiresAt  time.Time `gorm:"not null"`
}

// LiveAt reports whether t has not yet expired at now.
func (t *Token) LiveAt(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
