package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"haru/internal/config"
	"haru/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeSubtask
	modeComment
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	frameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// frameTabs is the cycle order for the time-frame filter; the empty
// frame means "all".
var frameTabs = []task.TimeFrame{"", task.FrameToday, task.FrameTomorrow, task.FrameFuture}

type editState struct {
	taskID      string
	title       string
	description string
	priority    string
	timeFrame   string
	tags        string
	index       int
}

type Model struct {
	manager *task.Manager
	cfg     config.Config

	visible []task.Task
	cursor  int
	mode    mode
	input   textinput.Model
	status  string

	frameIdx     int
	query        string
	showArchived bool

	confirmDel bool
	pendingDel *task.Task
	edit       *editState
}

func Run(manager *task.Manager, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		manager: manager,
		cfg:     cfg,
		status:  "Press 'a' to add, space to toggle, '/' to search.",
		input:   ti,
		mode:    modeList,
	}
	for i, f := range frameTabs {
		if string(f) == strings.ToLower(cfg.DefaultTimeFrame) {
			m.frameIdx = i
		}
	}
	m.reload()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) filter() task.Filter {
	f := task.Filter{
		TimeFrame: frameTabs[m.frameIdx],
		Query:     m.query,
	}
	if m.showArchived {
		f.Status = task.StatusArchived
	}
	return f
}

func (m *Model) reload() {
	m.visible = m.manager.Visible(m.filter())
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.edit != nil {
			return m.updateEditMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd, modeSearch, modeSubtask, modeComment:
		return m.updateInputMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		if m.mode == modeSearch {
			m.query = ""
			m.reload()
		}
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		return m.confirmInput()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.mode == modeSearch {
			m.query = m.input.Value()
			m.reload()
		}
		return m, cmd
	}
}

func (m Model) confirmInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAdd:
		frame := frameTabs[m.frameIdx]
		if frame == "" {
			frame = task.FrameToday
		}
		_, err := m.manager.Add(task.Draft{
			Title:     value,
			Priority:  task.PriorityMedium,
			TimeFrame: frame,
		})
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.status = "Added task"
	case modeSearch:
		m.query = value
		m.status = "Search: " + value
	case modeSubtask:
		t, ok := m.selected()
		if !ok {
			m.status = "No task selected"
			break
		}
		if _, err := m.manager.AddSubtask(t.ID, value); err != nil {
			m.status = fmt.Sprintf("subtask failed: %v", err)
			return m, nil
		}
		m.status = "Added subtask"
	case modeComment:
		t, ok := m.selected()
		if !ok {
			m.status = "No task selected"
			break
		}
		if value == "" {
			m.status = "Comment cannot be empty"
			return m, nil
		}
		if _, err := m.manager.AddComment(t.ID, value); err != nil {
			m.status = fmt.Sprintf("comment failed: %v", err)
			return m, nil
		}
		m.status = "Added comment"
	}
	m.input.SetValue("")
	m.input.Blur()
	m.mode = modeList
	m.reload()
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case m.cfg.Keys.MoveDown:
		return m.moveSelected(m.cursor + 1)
	case m.cfg.Keys.MoveUp:
		return m.moveSelected(m.cursor - 1)
	case m.cfg.Keys.NextFrame:
		m.frameIdx = (m.frameIdx + 1) % len(frameTabs)
		m.reload()
		m.status = "Filter: " + frameLabel(frameTabs[m.frameIdx])
	case m.cfg.Keys.PrevFrame:
		m.frameIdx = (m.frameIdx + len(frameTabs) - 1) % len(frameTabs)
		m.reload()
		m.status = "Filter: " + frameLabel(frameTabs[m.frameIdx])
	case m.cfg.Keys.ShowArchive:
		m.showArchived = !m.showArchived
		m.reload()
		if m.showArchived {
			m.status = "Showing archived tasks"
		} else {
			m.status = "Showing active tasks"
		}
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.query)
		m.input.Focus()
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Task title"
		m.input.Focus()
		m.status = "Add mode: type a title and press Enter"
	case m.cfg.Keys.Subtask:
		if _, ok := m.selected(); !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.mode = modeSubtask
		m.input.Placeholder = "Subtask title"
		m.input.Focus()
		m.status = "Subtask: type a title and press Enter"
	case m.cfg.Keys.Comment:
		if _, ok := m.selected(); !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.mode = modeComment
		m.input.Placeholder = "Comment"
		m.input.Focus()
		m.status = "Comment: type and press Enter"
	case m.cfg.Keys.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, err := m.manager.ToggleComplete(t.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.reload()
		m.status = "Toggled task"
	case m.cfg.Keys.Archive:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		var err error
		if t.Status == task.StatusArchived {
			err = m.manager.Unarchive(t.ID)
		} else {
			err = m.manager.Archive(t.ID)
		}
		if err != nil {
			m.status = fmt.Sprintf("archive failed: %v", err)
			return m, nil
		}
		m.reload()
		m.status = "Archive toggled"
	case m.cfg.Keys.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startEdit(t)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		n, _ := strconv.Atoi(key)
		if n > len(t.Subtasks) {
			m.status = "No such subtask"
			return m, nil
		}
		if _, err := m.manager.ToggleSubtask(t.ID, t.Subtasks[n-1].ID); err != nil {
			m.status = fmt.Sprintf("subtask toggle failed: %v", err)
			return m, nil
		}
		m.reload()
		m.status = "Toggled subtask"
	}
	return m, nil
}

func (m Model) moveSelected(dst int) (tea.Model, tea.Cmd) {
	if len(m.visible) == 0 || dst < 0 || dst >= len(m.visible) {
		return m, nil
	}
	if err := m.manager.Reorder(m.filter(), m.cursor, dst); err != nil {
		m.status = fmt.Sprintf("reorder failed: %v", err)
		return m, nil
	}
	m.cursor = dst
	m.reload()
	m.status = "Moved task"
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.manager.Delete(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
		m.confirmDel = false
		m.pendingDel = nil
		m.reload()
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) selected() (task.Task, bool) {
	if len(m.visible) == 0 {
		return task.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("haru"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.edit != nil {
		b.WriteString("Edit task (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderEditBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.edit.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(m.status)
		return b.String()
	}

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("No tasks here. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")
	b.WriteString(m.renderDetailPanel())
	b.WriteString("\n")
	b.WriteString(m.renderSummary())

	if m.mode != modeList {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(frameTabs))
	for i, f := range frameTabs {
		label := frameLabel(f)
		if i == m.frameIdx {
			parts = append(parts, frameStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	if m.showArchived {
		parts = append(parts, frameStyle.Render("(archive)"))
	}
	if m.query != "" {
		parts = append(parts, tagStyle.Render("?"+m.query))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		} else if m.cursor == i && m.mode == modeList {
			title = selectedStyle.Render(title)
		}

		line := fmt.Sprintf("%s %s %s %s", cursor, checkbox, shortPriority(t.Priority), title)
		if len(t.Subtasks) > 0 {
			line += dimStyle.Render(fmt.Sprintf(" (%d%%)", task.SubtaskProgress(t)))
		}
		if len(t.Tags) > 0 {
			line += " " + tagStyle.Render("#"+strings.Join(t.Tags, " #"))
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	t, ok := m.selected()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString(fmt.Sprintf("Notes     : %s\n", t.Description))
	}
	b.WriteString(fmt.Sprintf("Priority  : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Frame     : %s\n", t.TimeFrame))
	b.WriteString(fmt.Sprintf("Status    : %s\n", t.Status))
	b.WriteString(fmt.Sprintf("Created   : %s\n", t.CreatedAt.Format("2006-01-02 15:04")))
	if len(t.Subtasks) > 0 {
		b.WriteString(fmt.Sprintf("Subtasks  : %d%% done (press 1-9 to toggle)\n", task.SubtaskProgress(t)))
		for i, st := range t.Subtasks {
			mark := "[ ]"
			if st.Completed {
				mark = "[x]"
			}
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, mark, st.Title))
		}
	}
	for _, c := range t.Comments {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %s", c.CreatedAt.Format("01-02 15:04"), c.Content)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSummary() string {
	s := m.manager.Summary()
	line := fmt.Sprintf("today %d • tomorrow %d • future %d • done %d • archived %d",
		s.Today, s.Tomorrow, s.Future, s.Completed, s.Archived)
	if len(s.Tags) > 0 {
		parts := make([]string, 0, len(s.Tags))
		for _, tc := range s.Tags {
			parts = append(parts, fmt.Sprintf("#%s:%d", tc.Tag, tc.Count))
		}
		line += "  " + strings.Join(parts, " ")
	}
	return dimStyle.Render(line)
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s reorder • %s add • %s toggle • %s delete • %s archive • %s edit • %s search • %s frames • %s quit",
		k.Up, k.Down, k.MoveUp, k.MoveDown, k.Add, k.Toggle, k.Delete, k.Archive, k.Edit, k.Search, k.NextFrame, k.Quit)
}

func frameLabel(f task.TimeFrame) string {
	if f == "" {
		return "all"
	}
	return string(f)
}

func shortPriority(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "!!"
	case task.PriorityMedium:
		return "! "
	default:
		return "  "
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
