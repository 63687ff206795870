package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/session"
)

type StoreListCmd struct{}

func (c *StoreListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	view := ctx.Economy.Refresh(context.Background())
	if len(view.Items) == 0 {
		fmt.Println("商店暂时没有商品。")
		return nil
	}

	for _, item := range view.Items {
		fmt.Printf("%4d  %s %-20s  %d 积分", item.ID, item.Icon, item.Name, item.Cost)
		if item.Desc != "" {
			fmt.Printf("  %s", item.Desc)
		}
		fmt.Println()
	}

	balance, err := ctx.Economy.Balance()
	if err != nil {
		return err
	}
	fmt.Printf("\n当前积分: %d ✨\n", balance)
	return nil
}

type StoreBuyCmd struct {
	ID  int64 `arg:"" help:"Store item ID."`
	Yes bool  `short:"y" help:"Skip the confirmation prompt."`
}

func (c *StoreBuyCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	profile, err := session.Ensure(ctx.Store)
	if err != nil {
		return err
	}

	view := ctx.Economy.Refresh(context.Background())
	var item *models.StoreItem
	for i := range view.Items {
		if view.Items[i].ID == c.ID {
			item = &view.Items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("store item not found: %d", c.ID)
	}

	confirmed := c.Yes
	if !confirmed {
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("确认消耗 %d 积分兑换 %s 吗？", item.Cost, item.Name)).
			Affirmative("兑换").
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

	balance, tx, err := ctx.Economy.Purchase(profile, *item)
	if err != nil {
		if reportNotice(err) {
			return nil
		}
		return err
	}
	ctx.Economy.RecordPurchase(context.Background(), tx)
	fmt.Println("兑换成功！管理员已收到您的请求 🎉")
	fmt.Printf("剩余积分: %d\n", balance)
	return nil
}

type StoreHistoryCmd struct {
	Mine bool `help:"Show only this device's transactions."`
}

func (c *StoreHistoryCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	view := ctx.Economy.Refresh(context.Background())
	txs := view.Transactions
	if c.Mine {
		profile, err := session.Ensure(ctx.Store)
		if err != nil {
			return err
		}
		txs = economy.PersonalHistory(txs, profile.UserID)
	}

	if len(txs) == 0 {
		fmt.Println("还没有兑换记录。")
		return nil
	}

	for _, tx := range txs {
		fmt.Printf("%s  %s %s 兑换了 %s %s (%d 积分)\n",
			tx.DateStr, tx.UserAvatar, tx.UserName, tx.ItemIcon, tx.ItemName, tx.Cost)
	}
	return nil
}
