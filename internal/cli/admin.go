package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/constants"
)

// verifyAdmin resolves the admin secret (flag, env, or prompt) and checks it
// against the ledger. A wrong secret and an unreachable ledger are reported
// with distinct copy; both end the command without an error exit.
func verifyAdmin(ctx *Context, secret string) (bool, error) {
	if secret == "" {
		secret = ctx.Config.AdminSecret
	}
	if secret == "" {
		prompt := huh.NewInput().
			Title("请输入管理员密码").
			EchoMode(huh.EchoModePassword).
			Value(&secret)
		if err := prompt.Run(); err != nil {
			return false, err
		}
	}

	ok, err := ctx.Ledger.VerifyAdminSecret(context.Background(), secret)
	if err != nil {
		ctx.Logger.Debug().Err(err).Msg("admin verification request failed")
		fmt.Println("无法连接服务器，请检查网络或部署状态")
		return false, nil
	}
	if !ok {
		fmt.Println("密码错误 🚫")
		return false, nil
	}
	return true, nil
}

type AdminAddItemCmd struct {
	Name   string `arg:"" help:"Item name."`
	Cost   int    `arg:"" help:"Cost in points."`
	Icon   string `short:"i" help:"Item icon." default:"🎁"`
	Desc   string `short:"d" help:"Item description."`
	Secret string `help:"Admin secret (overrides SPARK_ADMIN_SECRET)."`
}

func (c *AdminAddItemCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	ok, err := verifyAdmin(ctx, c.Secret)
	if err != nil || !ok {
		return err
	}

	desc := c.Desc
	if desc == "" {
		desc = constants.DefaultItemDesc
	}

	if err := ctx.Ledger.AddCatalogItem(context.Background(), c.Name, c.Cost, c.Icon, desc); err != nil {
		ctx.Logger.Debug().Err(err).Msg("catalog item insert failed")
		fmt.Println("上架失败：数据库未连接")
		return nil
	}
	fmt.Println("商品已上架，全网同步！")
	return nil
}

type AdminRemoveItemCmd struct {
	ID     int64  `arg:"" help:"Store item ID."`
	Secret string `help:"Admin secret (overrides SPARK_ADMIN_SECRET)."`
}

func (c *AdminRemoveItemCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	ok, err := verifyAdmin(ctx, c.Secret)
	if err != nil || !ok {
		return err
	}

	// Removal is optimistic: the next catalog refresh is the source of truth.
	if err := ctx.Ledger.RemoveCatalogItem(context.Background(), c.ID); err != nil {
		ctx.Logger.Debug().Err(err).Msg("catalog item delete failed")
	}
	fmt.Println("商品已下架。")
	return nil
}
