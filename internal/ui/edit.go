package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"haru/internal/task"
)

func editFields() []string {
	return []string{"title", "description", "priority (low/medium/high)", "time frame (today/tomorrow/future)", "tags (comma separated)"}
}

func (m Model) startEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.edit = &editState{
		taskID:      t.ID,
		title:       t.Title,
		description: t.Description,
		priority:    string(t.Priority),
		timeFrame:   string(t.TimeFrame),
		tags:        strings.Join(t.Tags, ", "),
		index:       0,
	}
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.input.Focus()
	m.mode = modeEdit
	m.status = "Edit task: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.edit = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "right", "down":
		if m.edit == nil {
			return m, nil
		}
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index+1, len(editFields()))
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	case "shift+tab", "left", "up":
		if m.edit == nil {
			return m, nil
		}
		m.edit.setCurrentValue(m.input.Value())
		m.edit.index = wrapIndex(m.edit.index-1, len(editFields()))
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		if m.edit == nil {
			return m, nil
		}
		m.edit.setCurrentValue(m.input.Value())
		if m.edit.index >= len(editFields())-1 {
			return m.saveEdit()
		}
		m.edit.index++
		m.input.SetValue(m.edit.currentValue())
		m.input.Placeholder = m.edit.currentLabel()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	if m.edit == nil {
		return m, nil
	}
	t, err := m.manager.Get(m.edit.taskID)
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	priority, err := parsePriority(m.edit.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		return m, nil
	}
	frame, err := parseTimeFrame(m.edit.timeFrame)
	if err != nil {
		m.status = fmt.Sprintf("time frame invalid: %v", err)
		return m, nil
	}

	t.Title = strings.TrimSpace(m.edit.title)
	t.Description = m.edit.description
	t.Priority = priority
	t.TimeFrame = frame
	t.Tags = parseTags(m.edit.tags)

	if t.Title == "" {
		m.status = "Title cannot be empty"
		return m, nil
	}

	if _, err := m.manager.Update(t); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.edit = nil
	m.mode = modeList
	m.input.Blur()
	m.reload()
	m.status = "Task saved"
	return m, nil
}

func (es editState) currentLabel() string {
	return editFields()[es.index]
}

func (es editState) currentValue() string {
	switch es.index {
	case 0:
		return es.title
	case 1:
		return es.description
	case 2:
		return es.priority
	case 3:
		return es.timeFrame
	case 4:
		return es.tags
	default:
		return ""
	}
}

func (es *editState) setCurrentValue(v string) {
	switch es.index {
	case 0:
		es.title = v
	case 1:
		es.description = v
	case 2:
		es.priority = v
	case 3:
		es.timeFrame = v
	case 4:
		es.tags = v
	}
}

func (m Model) renderEditBox() string {
	if m.edit == nil {
		return ""
	}
	fields := editFields()
	values := []string{
		m.edit.title,
		m.edit.description,
		m.edit.priority,
		m.edit.timeFrame,
		m.edit.tags,
	}
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.edit.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-36s : %s\n", prefix, name, val))
	}
	return b.String()
}

func parsePriority(v string) (task.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "medium", "m":
		return task.PriorityMedium, nil
	case "low", "l":
		return task.PriorityLow, nil
	case "high", "h":
		return task.PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown priority %q", v)
	}
}

func parseTimeFrame(v string) (task.TimeFrame, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "today":
		return task.FrameToday, nil
	case "tomorrow":
		return task.FrameTomorrow, nil
	case "future":
		return task.FrameFuture, nil
	default:
		return "", fmt.Errorf("unknown time frame %q", v)
	}
}

func parseTags(v string) []string {
	parts := strings.Split(v, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
