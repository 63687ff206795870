package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/julianstephens/spark/internal/cli"
	"github.com/julianstephens/spark/internal/config"
	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/ledger"
	"github.com/julianstephens/spark/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store file path." type:"path" default:"~/.config/spark/spark.db"`
	API     string `help:"Ledger API base URL (overrides SPARK_API_URL)."`
	Debug   bool   `help:"Enable debug logging."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize spark storage."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Checkin cli.CheckinCmd `cmd:"" help:"Check in a habit for today."`
	Habit   struct {
		Add    cli.HabitAddCmd    `cmd:"" help:"Add a new habit."`
		List   cli.HabitListCmd   `cmd:"" help:"List all habits."`
		Delete cli.HabitDeleteCmd `cmd:"" help:"Delete a habit."`
	} `cmd:"" help:"Manage habits."`
	Backfill cli.BackfillCmd `cmd:"" help:"Spend a retroactive card on a missed day."`
	Store    struct {
		List    cli.StoreListCmd    `cmd:"" help:"List store items."`
		Buy     cli.StoreBuyCmd     `cmd:"" help:"Redeem points for an item."`
		History cli.StoreHistoryCmd `cmd:"" help:"Show the shared transaction log."`
	} `cmd:"" help:"Points store."`
	Profile struct {
		Show   cli.ProfileShowCmd   `cmd:"" help:"Show the local profile."`
		Nick   cli.ProfileNickCmd   `cmd:"" help:"Set the display name."`
		Avatar cli.ProfileAvatarCmd `cmd:"" help:"Set the avatar."`
		Bg     cli.ProfileBgCmd     `cmd:"" help:"Set or reset the background image."`
	} `cmd:"" help:"Manage the local profile."`
	Admin struct {
		AddItem    cli.AdminAddItemCmd    `cmd:"" help:"Publish a store item."`
		RemoveItem cli.AdminRemoveItemCmd `cmd:"" help:"Remove a store item."`
	} `cmd:"" help:"Admin operations on the shared store."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("spark"),
		kong.Description("Habit tracker with a points economy and a shared reward store"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	level := zerolog.WarnLevel
	if CLI.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	cfg := config.Load()
	if CLI.API != "" {
		cfg.APIURL = CLI.API
	}
	lc, err := ledger.New(ledger.Config{BaseURL: cfg.APIURL})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Store:   store,
		Ledger:  lc,
		Habits:  habit.NewService(store, lc, logger),
		Economy: economy.NewService(store, lc, logger),
		Config:  cfg,
		Logger:  logger,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
