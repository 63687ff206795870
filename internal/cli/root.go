package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/julianstephens/spark/internal/backup"
	"github.com/julianstephens/spark/internal/config"
	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/ledger"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
)

type Context struct {
	Store   storage.Provider
	Ledger  *ledger.Client
	Habits  *habit.Service
	Economy *economy.Service
	Config  config.Config
	Logger  zerolog.Logger
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		c.Logger.Warn().Err(err).Msg("automatic backup failed")
	}
}

// notices are the product copy shown for expected rejections. A rejection is
// a normal outcome, not a failure: commands print the notice and exit zero.
var notices = map[error]string{
	habit.ErrAlreadyCheckedIn:     "落子无悔，打卡后不能取消哦！🚫",
	habit.ErrAlreadyLoggedToday:   "今天已经记录过心情啦 ✨",
	habit.ErrChallengeComplete:    "挑战已完成，去开启新目标吧！🎉",
	habit.ErrNoCards:              "补签卡不足，请去商店兑换！",
	economy.ErrInsufficientPoints: "积分不足，快去打卡赚积分吧！🥺",
}

// reportNotice prints the product copy for an expected rejection and reports
// whether err was one. Unexpected errors pass through to the caller.
func reportNotice(err error) bool {
	for sentinel, msg := range notices {
		if errors.Is(err, sentinel) {
			fmt.Println(msg)
			return true
		}
	}
	return false
}

func kindLabel(k models.HabitKind) string {
	if k == models.KindStreak {
		return "连续打卡"
	}
	return "养成目标"
}

func formatHabitLine(h models.Habit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %s  %s", h.ID, kindLabel(h.Kind), h.Name)
	if h.Kind == models.KindStreak {
		fmt.Fprintf(&b, "  坚持 %d 天", h.Streak)
		if h.CompletedToday {
			b.WriteString("  今日已打卡 ✓")
		}
	} else {
		fmt.Fprintf(&b, "  %d/%d 天", len(h.Logs), h.TargetDays)
		if h.GridComplete() {
			b.WriteString("  已完成 🏆")
		}
	}
	return b.String()
}
