package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/session"
)

type BackfillCmd struct {
	ID  string `arg:"" help:"Habit ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackfillCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	profile, err := session.Ensure(ctx.Store)
	if err != nil {
		return err
	}

	// The card balance lives on the shared ledger; a fresh view keeps the
	// count honest when another device has spent cards.
	view := ctx.Economy.Refresh(context.Background())
	cards := economy.CardCount(view.Transactions, profile.UserID)
	if cards <= 0 {
		fmt.Println(notices[habit.ErrNoCards])
		return nil
	}

	confirmed := c.Yes
	if !confirmed {
		prompt := huh.NewConfirm().
			Title("确定使用一张补签卡进行补签吗？🎫").
			Description(fmt.Sprintf("当前剩余 %d 张补签卡。", cards)).
			Affirmative("使用").
			Negative("取消").
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
	}
	if !confirmed {
		fmt.Println("已取消。")
		return nil
	}

	h, tx, err := ctx.Habits.UseRetroactiveCard(c.ID, profile, cards)
	if err != nil {
		if reportNotice(err) {
			return nil
		}
		return err
	}
	ctx.Habits.RecordCardUsage(context.Background(), tx)

	fmt.Println("补签成功！✨")
	fmt.Println(formatHabitLine(h))
	return nil
}
