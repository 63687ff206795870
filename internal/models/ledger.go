package models

// StoreItem is a catalog entry on the shared ledger. Field tags mirror the
// remote store_items columns.
type StoreItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Cost      int    `json:"cost"`
	Icon      string `json:"icon"`
	Desc      string `json:"desc"`
	CreatedAt int64  `json:"created_at"`
}

// Transaction is an append-only ledger record of a purchase or card usage.
// Field tags mirror the remote transactions columns.
type Transaction struct {
	ID         int64  `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar"`
	ItemName   string `json:"item_name"`
	ItemIcon   string `json:"item_icon"`
	Cost       int    `json:"cost"`
	Timestamp  int64  `json:"timestamp"`
	DateStr    string `json:"date_str"`
}
