// Package tui is the interactive list. Every key press maps to one store
// operation and the list is rebuilt from the store afterwards, so the screen
// only ever shows what the store holds.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
)

// Store is the part of the todo store the TUI drives.
type Store interface {
	All() []model.Item
	RemainingCount() int
	CompletedCount() int
	TotalCount() int

	Add(title string) (model.Item, bool)
	Toggle(id int) bool
	Remove(id int) bool
	ClearCompleted() int
	ToggleAll()
	Reset()
}

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item model.Item
}

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.item.Title
	if it.item.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

var keys = struct {
	toggle, remove, add, clear, toggleAll, reset key.Binding
}{
	toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done")),
	toggleAll: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle all")),
	reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
}

func helpKeys() []key.Binding {
	return []key.Binding{keys.toggle, keys.remove, keys.add, keys.clear, keys.toggleAll, keys.reset}
}

// Model implements tea.Model over a Store.
type Model struct {
	store Store
	list  list.Model

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	status        string
	width, height int
}

// New builds the model and loads the current items.
func New(s Store) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = helpKeys
	l.AdditionalFullHelpKeys = helpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item title..."
	ti.CharLimit = 200

	m := Model{store: s, list: l, ti: ti, width: 80, height: 24}
	m.resize()
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(s Store) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}

// refresh rebuilds list items and the header from the store.
func (m *Model) refresh() tea.Cmd {
	items := m.store.All()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{it})
	}
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), m.store.CompletedCount(),
		pendingStyle.Render("•"), m.store.RemainingCount(),
		accentStyle.Render("Total"), m.store.TotalCount(),
	)
	return m.list.SetItems(li)
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.item, ok
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	k, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch k.String() {
	case "q", "esc":
		return m, tea.Quit
	case " ":
		if it, ok := m.selected(); ok && m.store.Toggle(it.ID) {
			m.status = "toggled #" + fmt.Sprint(it.ID)
		}
		return m, m.refresh()
	case "d":
		if it, ok := m.selected(); ok && m.store.Remove(it.ID) {
			m.status = "removed #" + fmt.Sprint(it.ID)
		}
		return m, m.refresh()
	case "a":
		m.adding = true
		m.addErr = ""
		m.ti.SetValue("")
		m.resize()
		return m, m.ti.Focus()
	case "c":
		n := m.store.ClearCompleted()
		m.status = fmt.Sprintf("cleared %d", n)
		return m, m.refresh()
	case "t":
		m.store.ToggleAll()
		m.status = "toggled all"
		return m, m.refresh()
	case "R":
		m.store.Reset()
		m.status = "reset"
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.addErr = "Title cannot be empty"
				return m, nil
			}
			it, ok := m.store.Add(title)
			if !ok {
				m.addErr = "Could not add item"
				return m, nil
			}
			m.status = "added #" + fmt.Sprint(it.ID)
			m.stopAdding()
			cmd := m.refresh()
			m.list.Select(len(m.list.Items()) - 1)
			return m, cmd
		case "esc":
			m.stopAdding()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h = m.height - 8
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	content := m.list.View()
	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += "  " + errorStyle.Render(m.addErr)
		}
		content += "\n" + borderStyle.Render(title+"\n"+m.ti.View())
	} else if m.status != "" {
		content += "\n" + helpStyle.Render(m.status)
	}
	return borderStyle.Render(content)
}
