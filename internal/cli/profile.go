package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/julianstephens/spark/internal/session"
)

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	profile, err := session.Ensure(ctx.Store)
	if err != nil {
		return err
	}

	avatar := profile.Avatar
	if session.IsImage(avatar) {
		avatar = "(自定义图片)"
	}
	fmt.Printf("ID:   %s\n", profile.UserID)
	fmt.Printf("昵称: %s\n", profile.Nickname)
	fmt.Printf("头像: %s\n", avatar)
	if profile.Background != "" {
		fmt.Println("背景: (自定义图片)")
	}

	balance, err := ctx.Economy.Balance()
	if err != nil {
		return err
	}
	fmt.Printf("积分: %d ✨\n", balance)
	return nil
}

type ProfileNickCmd struct {
	Name string `arg:"" help:"New display name."`
}

func (c *ProfileNickCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	profile, err := session.SetNickname(ctx.Store, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("昵称已更新: %s\n", profile.Nickname)
	return nil
}

type ProfileAvatarCmd struct {
	Value string `arg:"" help:"Emoji glyph, or an image path with --file."`
	File  bool   `short:"f" help:"Treat the value as an image file path."`
}

func (c *ProfileAvatarCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if !c.File {
		if _, err := session.SetAvatarGlyph(ctx.Store, c.Value); err != nil {
			return err
		}
		fmt.Println("头像已更新 ✨")
		return nil
	}

	data, mimeType, err := readImage(c.Value)
	if err != nil {
		return err
	}
	if _, err := session.SetAvatarImage(ctx.Store, data, mimeType); err != nil {
		if err == session.ErrAvatarTooLarge {
			fmt.Println("图片太大啦，请选择 2MB 以内的图片 🖼️")
			return nil
		}
		return err
	}
	fmt.Println("头像已更新 ✨")
	return nil
}

type ProfileBgCmd struct {
	Path  string `arg:"" optional:"" help:"Background image path."`
	Reset bool   `help:"Restore the default background."`
}

func (c *ProfileBgCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.Reset {
		if _, err := session.ResetBackground(ctx.Store); err != nil {
			return err
		}
		fmt.Println("背景已恢复默认。")
		return nil
	}
	if c.Path == "" {
		return fmt.Errorf("provide an image path or --reset")
	}

	data, mimeType, err := readImage(c.Path)
	if err != nil {
		return err
	}
	if _, err := session.SetBackground(ctx.Store, data, mimeType); err != nil {
		if err == session.ErrBackgroundTooLarge {
			fmt.Println("图片太大啦，请选择 3MB 以内的图片 🖼️")
			return nil
		}
		return err
	}
	fmt.Println("背景已更新 ✨")
	return nil
}

func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, mime.TypeByExtension(filepath.Ext(path)), nil
}
