package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the key-value persistence collaborator. Load reports absent
// state with ok=false; Save replaces the whole set atomically.
type Store interface {
	Load() (tasks []Task, ok bool, err error)
	Save(tasks []Task) error
}

// Manager owns the in-memory task set and applies every mutation.
//
// Each mutation computes the next set, persists it through the store,
// and only commits in memory when the write succeeds, so a storage
// failure keeps the last good state.
type Manager struct {
	store Store
	log   *zap.Logger

	now   func() time.Time
	newID func() string

	tasks []Task
}

// NewManager loads the persisted task set and wires the manager.
func NewManager(store Store, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tasks, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if !ok {
		tasks = []Task{}
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	m := &Manager{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
		tasks: tasks,
	}
	return m, nil
}

// Tasks returns a snapshot of the full set.
func (m *Manager) Tasks() []Task {
	out := make([]Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Visible returns the filtered, canonically sorted display sequence.
func (m *Manager) Visible(f Filter) []Task {
	return Visible(m.Tasks(), f)
}

// Summary aggregates counts over the full set.
func (m *Manager) Summary() Summary {
	return Summarize(m.tasks)
}

// Get returns the task with the given id.
func (m *Manager) Get(id string) (Task, error) {
	i := m.index(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return m.tasks[i].Clone(), nil
}

// Add creates a task from a draft. The new task gets a fresh id,
// creation time, active status, an order past every existing task,
// and a computed rank. Existing tasks are untouched.
func (m *Manager) Add(d Draft) (Task, error) {
	if strings.TrimSpace(d.Title) == "" {
		return Task{}, ErrEmptyTitle
	}
	t := Task{
		ID:          m.newID(),
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Priority:    d.Priority,
		TimeFrame:   d.TimeFrame,
		Status:      StatusActive,
		Tags:        dedupeTags(d.Tags),
		Subtasks:    append([]Subtask{}, d.Subtasks...),
		Comments:    []Comment{},
		CreatedAt:   m.now(),
		Order:       m.nextOrder(),
	}
	t.Normalize()
	t.Rank = Rank(t)

	next := append(m.Tasks(), t)
	if err := m.commit(next); err != nil {
		return Task{}, err
	}
	m.log.Debug("task added", zap.String("id", t.ID), zap.Int("rank", t.Rank))
	return t, nil
}

// Update replaces the stored task with the same id. ID, creation time,
// and manual order stay as stored; rank is recomputed from the updated
// fields before the write.
func (m *Manager) Update(t Task) (Task, error) {
	i := m.index(t.ID)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	stored := m.tasks[i]
	t = t.Clone()
	t.CreatedAt = stored.CreatedAt
	t.Order = stored.Order
	t.Tags = dedupeTags(t.Tags)
	t.Normalize()
	t.Rank = Rank(t)

	next := m.Tasks()
	next[i] = t
	if err := m.commit(next); err != nil {
		return Task{}, err
	}
	m.log.Debug("task updated", zap.String("id", t.ID), zap.Int("rank", t.Rank))
	return t, nil
}

// Delete removes a task permanently.
func (m *Manager) Delete(id string) error {
	i := m.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := m.Tasks()
	next = append(next[:i], next[i+1:]...)
	if err := m.commit(next); err != nil {
		return err
	}
	m.log.Debug("task deleted", zap.String("id", id))
	return nil
}

// Archive moves a task out of the normal views. Order and rank are
// left alone so unarchiving restores its old position.
func (m *Manager) Archive(id string) error {
	return m.setStatus(id, StatusArchived)
}

// Unarchive returns a task to the active views.
func (m *Manager) Unarchive(id string) error {
	return m.setStatus(id, StatusActive)
}

func (m *Manager) setStatus(id string, status Status) error {
	i := m.index(id)
	if i < 0 {
		return ErrNotFound
	}
	next := m.Tasks()
	next[i].Status = status
	if err := m.commit(next); err != nil {
		return err
	}
	m.log.Debug("task status changed", zap.String("id", id), zap.String("status", string(status)))
	return nil
}

// ToggleComplete flips the completed flag and recomputes the rank.
func (m *Manager) ToggleComplete(id string) (Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	t.Completed = !t.Completed
	return m.Update(t)
}

// AddSubtask appends a subtask with a fresh id.
func (m *Manager) AddSubtask(id, title string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrEmptyTitle
	}
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	t.Subtasks = append(t.Subtasks, Subtask{
		ID:    m.newID(),
		Title: strings.TrimSpace(title),
	})
	return m.Update(t)
}

// ToggleSubtask flips the completed flag of one subtask.
func (m *Manager) ToggleSubtask(id, subtaskID string) (Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			return m.Update(t)
		}
	}
	return Task{}, ErrSubtaskNotFound
}

// DeleteSubtask removes one subtask.
func (m *Manager) DeleteSubtask(id, subtaskID string) (Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			return m.Update(t)
		}
	}
	return Task{}, ErrSubtaskNotFound
}

// AddComment appends a comment stamped with the manager clock.
func (m *Manager) AddComment(id, content string) (Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	t.Comments = append(t.Comments, Comment{
		ID:        m.newID(),
		Content:   content,
		CreatedAt: m.now(),
	})
	return m.Update(t)
}

// SetTags replaces the tag set, deduplicating while keeping first-seen
// order.
func (m *Manager) SetTags(id string, tags []string) (Task, error) {
	t, err := m.Get(id)
	if err != nil {
		return Task{}, err
	}
	t.Tags = dedupeTags(tags)
	return m.Update(t)
}

// Reorder moves the task at src in the currently visible sequence to
// dst, then renumbers every task's order to its 0-based position in
// the merged full sequence. Tasks hidden by the filter keep their
// relative slots. Out-of-range indices are a bug in the caller and are
// rejected rather than clamped.
func (m *Manager) Reorder(f Filter, src, dst int) error {
	visible := Visible(m.tasks, f)
	if src < 0 || src >= len(visible) || dst < 0 || dst >= len(visible) {
		return fmt.Errorf("%w: src=%d dst=%d len=%d", ErrIndexOutOfRange, src, dst, len(visible))
	}

	moved := make([]Task, 0, len(visible))
	moved = append(moved, visible[:src]...)
	moved = append(moved, visible[src+1:]...)
	moved = append(moved[:dst], append([]Task{visible[src]}, moved[dst:]...)...)

	visibleIDs := make(map[string]struct{}, len(moved))
	for _, t := range moved {
		visibleIDs[t.ID] = struct{}{}
	}

	full := m.Tasks()
	SortByOrder(full)
	vi := 0
	for i := range full {
		if _, ok := visibleIDs[full[i].ID]; ok {
			full[i] = moved[vi]
			vi++
		}
	}
	for i := range full {
		full[i].Order = i
	}

	if err := m.commit(full); err != nil {
		return err
	}
	m.log.Debug("tasks reordered", zap.Int("src", src), zap.Int("dst", dst))
	return nil
}

// Replace swaps in a whole new task set, normalizing and re-ranking
// each entry. Used by import.
func (m *Manager) Replace(tasks []Task) error {
	next := make([]Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		c.Normalize()
		c.Rank = Rank(c)
		next[i] = c
	}
	return m.commit(next)
}

func (m *Manager) commit(next []Task) error {
	if err := m.store.Save(next); err != nil {
		m.log.Error("persist failed, keeping previous state", zap.Error(err))
		return fmt.Errorf("persist tasks: %w", err)
	}
	m.tasks = next
	return nil
}

func (m *Manager) index(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) nextOrder() int {
	if len(m.tasks) == 0 {
		return 0
	}
	max := m.tasks[0].Order
	for _, t := range m.tasks[1:] {
		if t.Order > max {
			max = t.Order
		}
	}
	return max + 1
}
