package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/models"
)

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Kind   string `short:"k" help:"Habit kind (streak|grid)." enum:"streak,grid" default:"streak"`
	Target int    `short:"t" help:"Target days for grid habits." default:"30"`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	h, err := ctx.Habits.Create(c.Name, models.HabitKind(c.Kind), c.Target)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}

	fmt.Printf("新挑战已开启！🚀 %s (ID: %s)\n", h.Name, h.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Habits.List()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("还没有打卡目标，用 'spark habit add' 开始吧！")
		return nil
	}

	for _, h := range habit.SortForDisplay(habits) {
		fmt.Println(formatHabitLine(h))
	}

	balance, err := ctx.Economy.Balance()
	if err != nil {
		return err
	}
	fmt.Printf("\n积分: %d ✨\n", balance)
	return nil
}

type HabitDeleteCmd struct {
	ID  string `arg:"" help:"Habit ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Habits.RequestDelete(c.ID); err != nil {
		return err
	}

	confirmed := c.Yes
	if !confirmed {
		h, err := ctx.Habits.Get(c.ID)
		if err != nil {
			return err
		}
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("确定要删除「%s」吗？", h.Name)).
			Description("删除后，所有打卡记录将无法恢复。").
			Affirmative("删除").
			Negative("取消").
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
	}

	if !confirmed {
		ctx.Habits.CancelDelete()
		fmt.Println("已取消。")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if _, err := ctx.Habits.ConfirmDelete(); err != nil {
		return err
	}
	fmt.Println("目标已删除 👋")
	return nil
}
