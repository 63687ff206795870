package constants

const (
	// DayFormat is the canonical calendar-day token used for all same-day
	// comparisons (daily award, duplicate check-in detection). Local time.
	DayFormat = "2006-01-02"
	// DateTimeFormat is the human-readable stamp stored on log entries and
	// sent to the shared ledger as date_str.
	DateTimeFormat = "2006-01-02 15:04:05"

	// Grid challenge length bounds. Requested lengths are clamped into
	// this range before a habit is persisted.
	MinTargetDays = 7
	MaxTargetDays = 100

	// ThemeCount is the number of cosmetic card themes; a habit gets a
	// random theme index in [0, ThemeCount) at creation.
	ThemeCount = 6

	// Upload ceilings, enforced before any state mutation.
	MaxAvatarBytes     = 2 << 20 // 2 MiB
	MaxBackgroundBytes = 3 << 20 // 3 MiB

	// RetroCardItemName is the reserved store item whose purchases grant
	// retroactive check-in cards. Usages are recorded under UsedCardMarker
	// so the redeemable count can be derived from the transaction log alone.
	RetroCardItemName = "补签卡"
	UsedCardMarker    = "used_card"
	UsedCardIcon      = "🎫"

	DefaultNickname = "神秘打卡人"
	DefaultAvatar   = "🤠"

	// DefaultItemDesc is attached to catalog items added without a description.
	DefaultItemDesc = "管理员添加"

	// TransactionFetchLimit matches the server-side LIMIT on the transaction log.
	TransactionFetchLimit = 50
)

func init() {
	if MinTargetDays <= 0 || MinTargetDays >= MaxTargetDays {
		panic("grid target bounds must satisfy 0 < MinTargetDays < MaxTargetDays")
	}
}
