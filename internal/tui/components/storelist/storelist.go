package storelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/spark/internal/models"
)

type BuyMsg struct {
	Item models.StoreItem
}

type RefreshMsg struct{}

type Item struct {
	StoreItem models.StoreItem
}

func (i Item) Title() string {
	return fmt.Sprintf("%s %s", i.StoreItem.Icon, i.StoreItem.Name)
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%d 积分", i.StoreItem.Cost)
	if i.StoreItem.Desc != "" {
		desc += " | " + i.StoreItem.Desc
	}
	return desc
}

func (i Item) FilterValue() string { return i.StoreItem.Name }

type KeyMap struct {
	Buy     key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Buy: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "buy"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []models.StoreItem, width, height int) Model {
	l := list.New(toItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Store"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Buy, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Buy, keys.Refresh}
	}

	return Model{list: l, keys: keys}
}

func toItems(items []models.StoreItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = Item{StoreItem: it}
	}
	return out
}

func (m *Model) SetItems(items []models.StoreItem) {
	m.list.SetItems(toItems(items))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Buy):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return BuyMsg{Item: i.StoreItem} }
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  商店暂时没有商品。\n  按 'r' 刷新。"
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
