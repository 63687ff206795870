package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	case StateStore:
		content = docStyle.Render(m.storeList.View())
	case StateHistory:
		content = docStyle.Render(m.viewHistory())
	case StateAddHabit, StateCheckIn:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirm(dangerStyle.Render("确定要删除这个目标吗？"), "删除后，所有打卡记录将无法恢复。")
	case StateConfirmBuy:
		title := "确认兑换吗？"
		if m.buyItem != nil {
			title = fmt.Sprintf("确认消耗 %d 积分兑换 %s 吗？", m.buyItem.Cost, m.buyItem.Name)
		}
		content = m.viewConfirm(title, "")
	case StateConfirmBackfill:
		content = m.viewConfirm(
			"确定使用一张补签卡进行补签吗？🎫",
			fmt.Sprintf("当前剩余 %d 张补签卡。", m.cards),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	var tabs []string
	for i, title := range []string{"打卡", "商店", "记录"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, pointsStyle.Render(fmt.Sprintf("✨ %d", m.balance)))
	if m.cards > 0 {
		tabs = append(tabs, pointsStyle.Render(fmt.Sprintf("🎫 %d", m.cards)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewHistory() string {
	view := m.view
	if len(view.Transactions) == 0 {
		return "\n  还没有兑换记录。"
	}

	var b strings.Builder
	for _, tx := range view.Transactions {
		fmt.Fprintf(&b, "%s  %s %s 兑换了 %s %s (%d 积分)\n",
			tx.DateStr, tx.UserAvatar, tx.UserName, tx.ItemIcon, tx.ItemName, tx.Cost)
	}
	return b.String()
}

func (m Model) viewConfirm(title, description string) string {
	lines := []string{title}
	if description != "" {
		lines = append(lines, "", description)
	}
	lines = append(lines, "", "[y] 确认", "[n] 取消")
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}
