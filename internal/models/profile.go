package models

// Profile is the locally owned identity attached to remote transactions.
// Avatar holds either an emoji glyph or an inline data-URI image payload.
type Profile struct {
	UserID     string `json:"user_id"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	Background string `json:"background,omitempty"`
}

// Wallet is the locally authoritative points state. LastAwardDay is the
// calendar-day token of the most recent daily point award.
type Wallet struct {
	Points       int    `json:"points"`
	LastAwardDay string `json:"last_award_day"`
}
