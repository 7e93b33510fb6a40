// Package tui renders the terminal surface: a tasks tab, an analytics
// tab and a settings tab. It holds no task state of its own; every
// mutation goes through the store and every durable write through the
// persistence gateway.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/analytics"
	"taskdeck/backup"
	"taskdeck/persist"
	"taskdeck/store"
)

type tab int

const (
	tabTasks tab = iota
	tabAnalytics
	tabSettings
)

func (t tab) String() string {
	switch t {
	case tabAnalytics:
		return "Analytics"
	case tabSettings:
		return "Settings"
	default:
		return "Tasks"
	}
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddTask
	modeEditTask
	modeImportPath
	modeConfirmDelete
)

type Model struct {
	st *store.Store
	gw *persist.Gateway

	tab    tab
	mode   uiMode
	cursor int
	input  textinput.Model

	editID      string
	confirmID   string
	confirmText string

	status    string
	statusErr bool

	width  int
	height int

	now func() time.Time
}

func NewModel(st *store.Store, gw *persist.Gateway, startupStatus string) *Model {
	input := textinput.New()
	input.CharLimit = 256

	status := strings.TrimSpace(startupStatus)
	if status == "" {
		status = "Ready"
	}

	return &Model{
		st:     st,
		gw:     gw,
		tab:    tabTasks,
		mode:   modeNormal,
		input:  input,
		status: status,
		now:    time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTask, modeEditTask, modeImportPath:
			return m, m.updateInputMode(msg)
		case modeConfirmDelete:
			m.updateConfirmMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				m.gw.Close()
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "tab":
		m.tab = (m.tab + 1) % 3
	case "1":
		m.tab = tabTasks
	case "2":
		m.tab = tabAnalytics
	case "3":
		m.tab = tabSettings
	}

	switch m.tab {
	case tabTasks:
		m.updateTasksTab(msg)
	case tabSettings:
		m.updateSettingsTab(msg)
	}
	return false
}

func (m *Model) updateTasksTab(msg tea.KeyMsg) {
	tasks := m.st.Tasks()
	m.clampCursor(len(tasks))

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		m.startInput(modeAddTask, "task text #category", "")
	case "e":
		if m.cursor < len(tasks) {
			task := tasks[m.cursor]
			m.editID = task.ID
			m.startInput(modeEditTask, "", task.Text)
		}
	case " ", "enter":
		if m.cursor < len(tasks) {
			if m.st.Toggle(tasks[m.cursor].ID) {
				m.setStatus("Toggled", false)
			}
		}
	case "d":
		if m.cursor < len(tasks) {
			m.mode = modeConfirmDelete
			m.confirmID = tasks[m.cursor].ID
			m.confirmText = tasks[m.cursor].Text
		}
	case "K", "shift+up":
		if m.cursor > 0 && m.cursor < len(tasks) {
			if m.st.Reorder(tasks[m.cursor].ID, tasks[m.cursor-1].ID) {
				m.cursor--
			}
		}
	case "J", "shift+down":
		if m.cursor < len(tasks)-1 {
			anchor := ""
			if m.cursor+2 < len(tasks) {
				anchor = tasks[m.cursor+2].ID
			}
			if m.st.Reorder(tasks[m.cursor].ID, anchor) {
				m.cursor++
			}
		}
	}
}

func (m *Model) updateSettingsTab(msg tea.KeyMsg) {
	switch msg.String() {
	case "t":
		m.st.SetDarkMode(!m.st.Settings().DarkMode)
		m.setStatus("Theme toggled", false)
	case "x":
		m.exportToFile()
	case "i":
		m.startInput(modeImportPath, "path to backup file", "")
	case "s":
		if m.gw.Save(m.st.Snapshot()) {
			m.setStatus("Saved", false)
		} else {
			m.setStatus("Error saving data", true)
		}
	}
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		m.submitInput(mode, value)
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submitInput(mode uiMode, value string) {
	switch mode {
	case modeAddTask:
		text, category := splitCategory(value)
		if _, ok := m.st.Add(text, category); ok {
			m.cursor = len(m.st.Tasks()) - 1
			m.setStatus("Task added", false)
		} else {
			m.setStatus("Task text must not be empty", true)
		}
	case modeEditTask:
		if m.st.UpdateText(m.editID, value) {
			m.setStatus("Task updated", false)
		} else {
			m.setStatus("Task text must not be empty", true)
		}
		m.editID = ""
	case modeImportPath:
		m.importFromFile(strings.TrimSpace(value))
	}
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y", "enter":
		if m.st.Delete(m.confirmID) {
			m.setStatus("Task deleted", false)
		}
		m.mode = modeNormal
	case "n", "N", "esc":
		m.mode = modeNormal
	}
	if m.mode == modeNormal {
		m.confirmID = ""
		m.confirmText = ""
	}
}

func (m *Model) exportToFile() {
	data, err := backup.Export(m.st.Snapshot())
	if err != nil {
		m.setStatus("Error preparing export", true)
		return
	}
	name := backup.Filename(m.now())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		m.setStatus("Error writing "+name, true)
		return
	}
	m.setStatus("Exported to "+name, false)
}

// importFromFile reads and merges a backup document. A successful import
// persists the merged snapshot immediately with a single direct write.
func (m *Model) importFromFile(path string) {
	if path == "" {
		m.setStatus("Import cancelled", false)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.setStatus("Error reading "+path, true)
		return
	}
	merged, err := backup.Import(data, m.st.Snapshot())
	if err != nil {
		m.setStatus("Failed to parse import file", true)
		return
	}
	m.st.Restore(merged)
	if !m.gw.Save(m.st.Snapshot()) {
		m.setStatus("Imported, but saving failed", true)
		return
	}
	m.setStatus("Data imported successfully", false)
}

func (m *Model) startInput(mode uiMode, placeholder, value string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// splitCategory separates an optional trailing "#category" from the task
// text, e.g. "Buy milk #Errands" -> ("Buy milk", "Errands").
func splitCategory(input string) (text, category string) {
	idx := strings.LastIndex(input, "#")
	if idx == -1 {
		return strings.TrimSpace(input), ""
	}
	return strings.TrimSpace(input[:idx]), strings.TrimSpace(input[idx+1:])
}

func (m *Model) View() string {
	st := m.styles()
	var b strings.Builder

	b.WriteString(m.viewHeader(st))
	b.WriteString("\n")

	switch m.tab {
	case tabAnalytics:
		b.WriteString(m.viewAnalytics(st))
	case tabSettings:
		b.WriteString(m.viewSettings(st))
	default:
		b.WriteString(m.viewTasks(st))
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus(st))
	b.WriteString("\n")
	b.WriteString(m.viewFooter(st))
	return b.String()
}

func (m *Model) viewHeader(st styles) string {
	parts := make([]string, 0, 3)
	for _, t := range []tab{tabTasks, tabAnalytics, tabSettings} {
		label := fmt.Sprintf(" %d %s ", int(t)+1, t)
		if t == m.tab {
			parts = append(parts, st.tabActive.Render(label))
		} else {
			parts = append(parts, st.tabInactive.Render(label))
		}
	}
	tabsRow := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	date := st.muted.Render(m.now().Format("Monday, January 2 15:04"))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabsRow, "  ", date)
}

func (m *Model) viewTasks(st styles) string {
	tasks := m.st.Tasks()
	if len(tasks) == 0 && m.mode != modeAddTask {
		return st.muted.Render("No tasks. Press 'a' to add one.")
	}

	var b strings.Builder
	start, end := m.visibleRange(len(tasks))
	for i := start; i < end; i++ {
		task := tasks[i]
		mark := "[ ]"
		if task.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, task.Text)
		if task.Category != "" {
			line += " " + st.category.Render("#"+task.Category)
		}
		switch {
		case i == m.cursor && task.Completed:
			line = st.selected.Render("> ") + st.done.Render(line)
		case i == m.cursor:
			line = st.selected.Render("> " + line)
		case task.Completed:
			line = "  " + st.done.Render(line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.mode {
	case modeAddTask:
		b.WriteString("\nAdd: " + m.input.View())
	case modeEditTask:
		b.WriteString("\nEdit: " + m.input.View())
	case modeConfirmDelete:
		b.WriteString("\n" + st.warn.Render(fmt.Sprintf("Delete %q? (y/n)", m.confirmText)))
	default:
		b.WriteString("\n" + st.muted.Render("a add · e edit · space toggle · d delete · J/K move · tab switch"))
	}
	return b.String()
}

func (m *Model) viewAnalytics(st styles) string {
	tasks := m.st.Tasks()
	var b strings.Builder

	rate := analytics.CompletionRate(tasks)
	avg := analytics.AvgCompletionDays(tasks)
	b.WriteString(st.heading.Render("Task Completion"))
	b.WriteString(fmt.Sprintf("\n  %.1f%% complete · avg. completion time %.1f days\n\n", rate, avg))

	b.WriteString(st.heading.Render("Distribution by Category"))
	b.WriteString("\n")
	for _, bucket := range analytics.CategoryHistogram(tasks) {
		b.WriteString(fmt.Sprintf("  %-14s %s %d\n", bucket.Category, st.bar.Render(bar(bucket.Count)), bucket.Count))
	}

	b.WriteString("\n")
	b.WriteString(st.heading.Render("Productivity Patterns"))
	b.WriteString("\n")
	for _, band := range analytics.CompletionsByTimeOfDay(tasks) {
		b.WriteString(fmt.Sprintf("  %-14s %s %d\n", band.Band, st.bar.Render(bar(band.Count)), band.Count))
	}

	b.WriteString("\n")
	b.WriteString(st.heading.Render("Weekly Task Activity"))
	b.WriteString("\n")
	for _, day := range analytics.WeeklyActivity(tasks, m.now()) {
		b.WriteString(fmt.Sprintf("  %-7s created %-3d completed %d\n",
			day.Day.Format("Jan 2"), day.Created, day.Completed))
	}
	return b.String()
}

func (m *Model) viewSettings(st styles) string {
	theme := "light"
	if m.st.Settings().DarkMode {
		theme = "dark"
	}

	var b strings.Builder
	b.WriteString(st.heading.Render("Settings"))
	b.WriteString(fmt.Sprintf("\n  Theme: %s\n\n", theme))
	b.WriteString("  t  toggle dark mode\n")
	b.WriteString("  x  export data to a JSON backup file\n")
	b.WriteString("  i  import data from a JSON backup file\n")
	b.WriteString("  s  save now\n")
	if m.mode == modeImportPath {
		b.WriteString("\nImport from: " + m.input.View())
	}
	return b.String()
}

func (m *Model) viewStatus(st styles) string {
	if m.statusErr {
		return st.warn.Render(m.status)
	}
	return st.muted.Render(m.status)
}

func (m *Model) viewFooter(st styles) string {
	tasks := m.st.Tasks()
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return st.muted.Render(fmt.Sprintf("%d tasks · %d completed", len(tasks), done))
}

// visibleRange windows the task list around the cursor so long lists fit
// the terminal height.
func (m *Model) visibleRange(n int) (start, end int) {
	rows := m.visibleRows()
	if n <= rows {
		return 0, n
	}
	start = m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	end = start + rows
	if end > n {
		end = n
		start = end - rows
	}
	return start, end
}

func (m *Model) visibleRows() int {
	// header, blank, prompt/hint, status, footer
	reserved := 6
	rows := m.height - reserved
	if rows < 3 {
		rows = 3
	}
	return rows
}

func bar(count int) string {
	if count > 40 {
		count = 40
	}
	return strings.Repeat("█", count)
}
