package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/spark/internal/economy"
	"github.com/julianstephens/spark/internal/habit"
	"github.com/julianstephens/spark/internal/models"
	"github.com/julianstephens/spark/internal/tui/components/habitlist"
	"github.com/julianstephens/spark/internal/tui/components/storelist"
)

// notices map expected rejections to product copy shown on the status line.
var notices = map[error]string{
	habit.ErrAlreadyCheckedIn:     "落子无悔，打卡后不能取消哦！🚫",
	habit.ErrAlreadyLoggedToday:   "今天已经记录过心情啦 ✨",
	habit.ErrChallengeComplete:    "挑战已完成，去开启新目标吧！🎉",
	habit.ErrNoCards:              "补签卡不足，请去商店兑换！",
	economy.ErrInsufficientPoints: "积分不足，快去打卡赚积分吧！🥺",
}

func noticeFor(err error) (string, bool) {
	for sentinel, msg := range notices {
		if errors.Is(err, sentinel) {
			return msg, true
		}
	}
	return "", false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habitList.SetSize(msg.Width-h, msg.Height-v-4)
		m.storeList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case refreshedMsg:
		m.view = msg.view
		m.storeList.SetItems(msg.view.Items)
		m.cards = economy.CardCount(msg.view.Transactions, m.profile.UserID)
		return m, nil
	}

	// Handle Add Habit State
	if m.state == StateAddHabit {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.state = StateHabits
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			if _, err := m.habits.Create(m.habitForm.Name, m.habitForm.Kind, m.habitForm.Target); err != nil {
				// Stay in form state on error to allow retry
				m.form.State = huh.StateNormal
			} else {
				m.status = "新挑战已开启！🚀"
				m.reloadHabits()
				m.state = StateHabits
			}
		case huh.StateAborted:
			m.state = StateHabits
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Grid Check-In State
	if m.state == StateCheckIn {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.state = StateHabits
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			result, err := m.habits.SubmitGridCheckIn(m.checkInID, m.checkInForm.Mood, m.checkInForm.Comment)
			if err != nil {
				if notice, ok := noticeFor(err); ok {
					m.status = notice
				} else {
					m.status = "打卡失败，请稍后再试"
				}
			} else {
				m.status = checkInStatus(result.Awarded)
				m.reloadBalance()
				m.reloadHabits()
			}
			m.state = StateHabits
		case huh.StateAborted:
			m.state = StateHabits
		}
		return m, tea.Batch(cmds...)
	}

	// Handle confirmation states with y/n
	if m.state == StateConfirmDelete || m.state == StateConfirmBuy || m.state == StateConfirmBackfill {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y":
				return m.confirmAccepted()
			case "n", "N", "esc", "q":
				return m.confirmRejected()
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			m.status = ""
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.status = ""
			return m, nil
		}

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Kind: models.KindStreak, Target: 30}
		m.form = newAddHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.CheckInMsg:
		return m.startCheckIn(msg.ID)

	case habitlist.DeleteHabitMsg:
		if err := m.habits.RequestDelete(msg.ID); err != nil {
			return m, nil
		}
		m.state = StateConfirmDelete
		return m, nil

	case habitlist.BackfillMsg:
		if m.cards <= 0 {
			m.status = notices[habit.ErrNoCards]
			return m, nil
		}
		m.backfillID = msg.ID
		m.state = StateConfirmBackfill
		return m, nil

	case storelist.BuyMsg:
		item := msg.Item
		m.buyItem = &item
		m.state = StateConfirmBuy
		return m, nil

	case storelist.RefreshMsg:
		m.status = ""
		return m, m.refreshCmd()
	}

	// Route remaining messages to the active tab's component.
	switch m.state {
	case StateHabits:
		var cmd tea.Cmd
		m.habitList, cmd = m.habitList.Update(msg)
		cmds = append(cmds, cmd)
	case StateStore:
		var cmd tea.Cmd
		m.storeList, cmd = m.storeList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) startCheckIn(id string) (tea.Model, tea.Cmd) {
	h, err := m.habits.Get(id)
	if err != nil {
		return m, nil
	}

	if h.Kind == models.KindStreak {
		result, err := m.habits.CheckInStreak(id)
		if err != nil {
			if notice, ok := noticeFor(err); ok {
				m.status = notice
			}
			return m, nil
		}
		m.status = checkInStatus(result.Awarded)
		m.reloadBalance()
		m.reloadHabits()
		return m, nil
	}

	if err := m.habits.OpenGridCheckIn(id); err != nil {
		if notice, ok := noticeFor(err); ok {
			m.status = notice
		}
		return m, nil
	}

	m.checkInID = id
	m.checkInForm = &CheckInFormModel{Mood: models.MoodHappy}
	m.form = newCheckInForm(m.checkInForm)
	m.state = StateCheckIn
	return m, m.form.Init()
}

func (m Model) confirmAccepted() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateConfirmDelete:
		m.state = StateHabits
		if _, err := m.habits.ConfirmDelete(); err != nil {
			return m, nil
		}
		m.status = "目标已删除 👋"
		m.reloadHabits()
		return m, nil

	case StateConfirmBuy:
		m.state = StateStore
		if m.buyItem == nil {
			return m, nil
		}
		item := *m.buyItem
		m.buyItem = nil

		// The debit commits here on the event loop; only the best-effort
		// append and the refetch run in the background.
		balance, tx, err := m.economy.Purchase(m.profile, item)
		if err != nil {
			if notice, ok := noticeFor(err); ok {
				m.status = notice
			} else {
				m.status = "兑换失败，请稍后再试"
			}
			return m, nil
		}
		m.balance = balance
		m.status = "兑换成功！管理员已收到您的请求 🎉"
		econ, prev := m.economy, m.view
		return m, func() tea.Msg {
			econ.RecordPurchase(context.Background(), tx)
			return refreshedMsg{view: econ.FetchView(context.Background(), prev)}
		}

	case StateConfirmBackfill:
		m.state = StateHabits
		id := m.backfillID
		m.backfillID = ""

		_, tx, err := m.habits.UseRetroactiveCard(id, m.profile, m.cards)
		if err != nil {
			if notice, ok := noticeFor(err); ok {
				m.status = notice
			} else {
				m.status = "补签失败，请稍后再试"
			}
			return m, nil
		}
		m.status = "补签成功！✨"
		m.reloadHabits()
		habits, econ, prev := m.habits, m.economy, m.view
		return m, func() tea.Msg {
			habits.RecordCardUsage(context.Background(), tx)
			return refreshedMsg{view: econ.FetchView(context.Background(), prev)}
		}
	}
	return m, nil
}

func (m Model) confirmRejected() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateConfirmDelete:
		m.habits.CancelDelete()
		m.state = StateHabits
	case StateConfirmBuy:
		m.buyItem = nil
		m.state = StateStore
	case StateConfirmBackfill:
		m.backfillID = ""
		m.state = StateHabits
	}
	return m, nil
}

func checkInStatus(awarded bool) string {
	if awarded {
		return "打卡成功！积分 +1"
	}
	return "打卡成功！今日积分已拿 ✨"
}
