// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nibzard/tasklist/internal/output"
	"github.com/nibzard/tasklist/internal/store"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	now func() time.Time
}

// WithClock sets the clock used for overdue markers.
func WithClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// RunTUI starts the TUI over a loaded store.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(s, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
)

// Add form field order.
const (
	fieldNumber = iota
	fieldTitle
	fieldDue
	fieldCount
)

type tuiModel struct {
	store    *store.Store
	now      func() time.Time
	mode     mode
	cursor   int // row in the filtered view
	form     []textinput.Model
	focus    int
	search   textinput.Model
	status   string
	showHelp bool
}

func newTUIModel(s *store.Store, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	form := make([]textinput.Model, fieldCount)
	for i := range form {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		form[i] = ti
	}
	form[fieldNumber].Prompt = "Number: "
	form[fieldNumber].Placeholder = "10"
	form[fieldNumber].CharLimit = 32
	form[fieldTitle].Prompt = "Title:  "
	form[fieldTitle].Placeholder = "What needs doing"
	form[fieldDue].Prompt = "Due:    "
	form[fieldDue].Placeholder = "YYYY-MM-DD"
	form[fieldDue].CharLimit = 10

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "title, number or date"
	search.CharLimit = 128
	search.Width = 40

	return &tuiModel{
		store:  s,
		now:    c.now,
		form:   form,
		search: search,
		status: "a add · space toggle · d delete · g grab · / search · ? help",
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeSearch:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	case tea.WindowSizeMsg:
		width := msg.Width - 12
		if width < 10 {
			width = 10
		}
		for i := range m.form {
			m.form[i].Width = width
		}
		m.search.Width = width
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.store.FilteredView()
	m.cursor = clampCursor(m.cursor, len(view))

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(view))
	case " ", "space", "x":
		entry, ok := m.selected(view)
		if !ok {
			return m, nil
		}
		if err := m.store.ToggleCheck(entry.Index); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.status = "Toggled " + output.NormalizeTitle(entry.Task.Title)
	case "d":
		entry, ok := m.selected(view)
		if !ok {
			return m, nil
		}
		if err := m.store.Delete(entry.Index); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(m.store.FilteredView()))
		m.status = "Deleted " + output.NormalizeTitle(entry.Task.Title)
	case "a":
		m.openAddForm()
		return m, textinput.Blink
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.store.SearchTerm())
		m.search.CursorEnd()
		m.search.Focus()
		m.status = "Search: enter to apply, esc to cancel"
		return m, textinput.Blink
	case "g":
		if _, dragging := m.store.Dragging(); dragging {
			m.drop(view)
			return m, nil
		}
		entry, ok := m.selected(view)
		if !ok {
			return m, nil
		}
		if err := m.store.BeginDrag(entry.Index); err != nil {
			m.status = fmt.Sprintf("grab failed: %v", err)
			return m, nil
		}
		m.status = "Grabbed " + output.NormalizeTitle(entry.Task.Title) + ": move and press g or enter to drop, esc to cancel"
	case "enter":
		if _, dragging := m.store.Dragging(); dragging {
			m.drop(view)
		}
	case "esc":
		if _, dragging := m.store.Dragging(); dragging {
			m.store.CancelDrag()
			m.status = "Move cancelled"
			return m, nil
		}
		if m.store.SearchTerm() != "" {
			m.store.Search("")
			m.cursor = clampCursor(m.cursor, len(m.store.FilteredView()))
			m.status = "Search cleared"
		}
	case "?", "h":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// drop completes a pending drag at the row under the cursor and keeps the
// cursor on the moved task.
func (m *tuiModel) drop(view []store.Entry) {
	from, _ := m.store.Dragging()
	target, ok := m.selected(view)
	if !ok {
		m.store.CancelDrag()
		return
	}

	tasks := m.store.Tasks()
	var id uuid.UUID
	if from >= 0 && from < len(tasks) {
		id = tasks[from].ID
	}

	if err := m.store.CompleteDrag(target.Index); err != nil {
		m.status = fmt.Sprintf("move failed: %v", err)
		return
	}
	m.followTask(id)
	m.status = fmt.Sprintf("Moved to position %d", target.Index+1)
}

// followTask puts the cursor on the row holding id, if it is visible.
func (m *tuiModel) followTask(id uuid.UUID) {
	index := m.store.IndexOf(id)
	if index < 0 {
		return
	}
	for row, entry := range m.store.FilteredView() {
		if entry.Index == index {
			m.cursor = row
			return
		}
	}
}

func (m *tuiModel) openAddForm() {
	m.mode = modeAdd
	for i := range m.form {
		m.form[i].SetValue("")
		m.form[i].Blur()
	}
	m.focus = fieldNumber
	m.form[m.focus].Focus()
	m.status = "New task: tab to switch fields, enter to save, esc to cancel"
}

func (m *tuiModel) closeAddForm() {
	for i := range m.form {
		m.form[i].Blur()
	}
	m.mode = modeList
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeAddForm()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		number := m.form[fieldNumber].Value()
		title := m.form[fieldTitle].Value()
		due := m.form[fieldDue].Value()
		if !m.store.Add(number, title, due) {
			m.status = "Number and title are required"
			return m, nil
		}
		m.closeAddForm()
		m.cursor = clampCursor(len(m.store.FilteredView())-1, len(m.store.FilteredView()))
		m.status = "Added " + output.NormalizeTitle(title)
		return m, nil
	}

	var cmd tea.Cmd
	m.form[m.focus], cmd = m.form[m.focus].Update(msg)
	return m, cmd
}

func (m *tuiModel) setFocus(field int) {
	m.form[m.focus].Blur()
	m.focus = field
	m.form[m.focus].Focus()
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.mode = modeList
		m.status = "Search unchanged"
		return m, nil
	case "enter":
		m.store.Search(m.search.Value())
		m.search.Blur()
		m.mode = modeList
		view := m.store.FilteredView()
		m.cursor = clampCursor(m.cursor, len(view))
		m.status = fmt.Sprintf("%d of %d tasks match", len(view), m.store.Len())
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *tuiModel) selected(view []store.Entry) (store.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(view) {
		return store.Entry{}, false
	}
	return view[m.cursor], true
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.store)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if term := m.store.SearchTerm(); term != "" {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Search: %q (esc to clear)", term)) + "\n\n")
	}

	view := m.store.FilteredView()
	cursor := clampCursor(m.cursor, len(view))
	dragFrom, dragging := m.store.Dragging()
	today := m.now()

	if len(view) == 0 {
		if m.store.SearchTerm() != "" {
			b.WriteString("  No matching tasks.\n")
		} else {
			b.WriteString("  No tasks. Press a to add one.\n")
		}
	}
	for row, entry := range view {
		grabbed := dragging && entry.Index == dragFrom
		b.WriteString(renderRow(entry, row == cursor, grabbed, today))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		for i := range m.form {
			b.WriteString(m.form[i].View() + "\n")
		}
		b.WriteString("\n")
	case modeSearch:
		b.WriteString(m.search.View() + "\n\n")
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	writeFooter(&b)
	return b.String()
}

func renderRow(entry store.Entry, cursor, grabbed bool, today time.Time) string {
	task := entry.Task

	prefix := "  "
	if grabbed {
		prefix = "≡ "
	}
	if cursor {
		prefix = cursorStyle.Render(">") + " "
	}

	line := fmt.Sprintf("%s %s  %s", output.CheckBox(task.IsChecked), task.Number, output.NormalizeTitle(task.Title))
	if task.DueDate != "" {
		line += " (" + task.DueDate + ")"
	}

	switch {
	case grabbed:
		line = grabbedStyle.Render(line)
	case task.IsChecked:
		line = checkedStyle.Render(line)
	}

	if output.IsOverdue(task.DueDate, today) {
		line += " " + lateStyle.Render(output.LateMarker)
	}
	return prefix + line
}

func writeTitle(b *strings.Builder, s *store.Store) {
	done := 0
	tasks := s.Tasks()
	for _, t := range tasks {
		if t.IsChecked {
			done++
		}
	}
	title := "Tasklist"
	b.WriteString(titleStyle.Render(title) + "  " + labelStyle.Render(fmt.Sprintf("%d/%d done", done, len(tasks))) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  ↑/k, ↓/j     Move cursor\n")
	b.WriteString("  space, x     Toggle done\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  a            Add task (tab switches fields)\n")
	b.WriteString("  /            Search title, number and due date\n")
	b.WriteString("  g            Grab task, then g or enter to drop\n")
	b.WriteString("  esc          Cancel move or clear search\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(footerStyle.Render("Press ? for help | q to quit") + "\n")
}

func clampCursor(cursor, length int) int {
	if length == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
