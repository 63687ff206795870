package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/models"
)

type CheckinCmd struct {
	ID      string `arg:"" help:"Habit ID."`
	Mood    string `short:"m" help:"Mood for grid check-ins (happy|neutral|sad)."`
	Comment string `short:"c" help:"Optional note for grid check-ins."`
}

func (c *CheckinCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	h, err := ctx.Habits.Get(c.ID)
	if err != nil {
		return err
	}

	if h.Kind == models.KindStreak {
		result, err := ctx.Habits.CheckInStreak(c.ID)
		if err != nil {
			if reportNotice(err) {
				return nil
			}
			return err
		}
		printCheckinResult(result.Awarded)
		fmt.Printf("「%s」已坚持 %d 天 🔥\n", result.Habit.Name, result.Habit.Streak)
		return nil
	}

	if err := ctx.Habits.OpenGridCheckIn(c.ID); err != nil {
		if reportNotice(err) {
			return nil
		}
		return err
	}

	mood := models.Mood(c.Mood)
	comment := c.Comment
	if mood == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[models.Mood]().
					Title("今天感觉如何？").
					Options(
						huh.NewOption("开心 😊", models.MoodHappy),
						huh.NewOption("平静 😐", models.MoodNeutral),
						huh.NewOption("难过 😢", models.MoodSad),
					).
					Value(&mood),
				huh.NewInput().
					Title("想说点什么吗？（可选）").
					Value(&comment),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	result, err := ctx.Habits.SubmitGridCheckIn(c.ID, mood, comment)
	if err != nil {
		if reportNotice(err) {
			return nil
		}
		return err
	}
	printCheckinResult(result.Awarded)
	fmt.Printf("「%s」进度 %d/%d 天\n", result.Habit.Name, len(result.Habit.Logs), result.Habit.TargetDays)
	if result.Habit.GridComplete() {
		fmt.Println("挑战达成！🏆")
	}
	return nil
}

func printCheckinResult(awarded bool) {
	if awarded {
		fmt.Println("打卡成功！积分 +1")
	} else {
		fmt.Println("打卡成功！今日积分已拿 ✨")
	}
}
