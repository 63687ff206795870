package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/storage"
	"github.com/julianstephens/spark/internal/tui/components/habitlist"
	"github.com/julianstephens/spark/internal/tui/components/storelist"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateStore
	StateHistory
	StateAddHabit
	StateCheckIn
	StateConfirmDelete
	StateConfirmBuy
	StateConfirmBackfill
)

// tabCount is the number of top-level tabs cycled with tab/shift+tab.
const tabCount = 3

type HabitFormModel struct {
	Name   string
	Kind   models.HabitKind
	Target int
}

type CheckInFormModel struct {
	Mood    models.Mood
	Comment string
}

// refreshedMsg carries a fresh remote view back onto the update loop.
type refreshedMsg struct {
	view economy.View
}

type Model struct {
	store   storage.Provider
	habits  *habit.Service
	economy *economy.Service
	profile models.Profile

	state         SessionState
	keys          KeyMap
	help          help.Model
	habitList     habitlist.Model
	storeList     storelist.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	checkInForm   *CheckInFormModel
	checkInID     string
	buyItem       *models.StoreItem
	backfillID    string
	view          economy.View
	cards         int
	balance       int
	status        string
	quitting      bool
	width, height int
}

func NewModel(store storage.Provider, habits *habit.Service, econ *economy.Service, profile models.Profile) Model {
	habitsList, _ := habits.List()

	m := Model{
		store:     store,
		habits:    habits,
		economy:   econ,
		profile:   profile,
		state:     StateHabits,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(habit.SortForDisplay(habitsList), 0, 0),
		storeList: storelist.New(nil, 0, 0),
	}
	m.balance, _ = econ.Balance()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// refreshCmd fetches the remote view off the update loop. The model owns the
// current view; FetchView only reads the snapshot passed to it, so the
// background fetch never touches shared state.
func (m Model) refreshCmd() tea.Cmd {
	econ, prev := m.economy, m.view
	return func() tea.Msg {
		return refreshedMsg{view: econ.FetchView(context.Background(), prev)}
	}
}

func (m *Model) reloadHabits() {
	habitsList, err := m.habits.List()
	if err != nil {
		return
	}
	m.habitList.SetHabits(habit.SortForDisplay(habitsList))
}

func (m *Model) reloadBalance() {
	if balance, err := m.economy.Balance(); err == nil {
		m.balance = balance
	}
}

func newAddHabitForm(f *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("目标名称").
				Value(&f.Name),
			huh.NewSelect[models.HabitKind]().
				Title("打卡类型").
				Options(
					huh.NewOption("连续打卡（每天坚持）", models.KindStreak),
					huh.NewOption("养成目标（固定天数）", models.KindGrid),
				).
				Value(&f.Kind),
			huh.NewSelect[int]().
				Title("目标天数（养成目标）").
				Options(
					huh.NewOption("7 天", 7),
					huh.NewOption("21 天", 21),
					huh.NewOption("30 天", 30),
					huh.NewOption("66 天", 66),
					huh.NewOption("100 天", 100),
				).
				Value(&f.Target),
		),
	)
}

func newCheckInForm(f *CheckInFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.Mood]().
				Title("今天感觉如何？").
				Options(
					huh.NewOption("开心 😊", models.MoodHappy),
					huh.NewOption("平静 😐", models.MoodNeutral),
					huh.NewOption("难过 😢", models.MoodSad),
				).
				Value(&f.Mood),
			huh.NewInput().
				Title("想说点什么吗？（可选）").
				Value(&f.Comment),
		),
	)
}
