package task

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with a switchable failure mode.
type memStore struct {
	tasks    []Task
	present  bool
	failSave bool
	saves    int
}

func (s *memStore) Load() ([]Task, bool, error) {
	if !s.present {
		return nil, false, nil
	}
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out, true, nil
}

func (s *memStore) Save(tasks []Task) error {
	if s.failSave {
		return errors.New("disk full")
	}
	s.tasks = make([]Task, len(tasks))
	copy(s.tasks, tasks)
	s.present = true
	s.saves++
	return nil
}

func newTestManager(t *testing.T) (*Manager, *memStore) {
	t.Helper()
	store := &memStore{}
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	seq := 0
	m.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return m, store
}

func TestAdd_AssignsFieldsAndRank(t *testing.T) {
	m, store := newTestManager(t)

	got, err := m.Add(Draft{Title: "  write report  ", Priority: PriorityHigh, TimeFrame: FrameToday})
	require.NoError(t, err)

	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 0, got.Order)
	assert.Equal(t, 3300, got.Rank)
	assert.False(t, got.CreatedAt.IsZero())
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Subtasks)
	assert.NotNil(t, got.Comments)
	assert.Equal(t, 1, store.saves)
}

func TestAdd_EmptyTitleRejected(t *testing.T) {
	m, store := newTestManager(t)

	_, err := m.Add(Draft{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Zero(t, store.saves)
}

func TestAdd_OrderStrictlyAboveExisting(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 0; i < 3; i++ {
		_, err := m.Add(Draft{Title: fmt.Sprintf("t%d", i), Priority: PriorityLow, TimeFrame: FrameFuture})
		require.NoError(t, err)
	}
	latest, err := m.Add(Draft{Title: "newest", Priority: PriorityLow, TimeFrame: FrameFuture})
	require.NoError(t, err)

	for _, existing := range m.Tasks() {
		if existing.ID != latest.ID {
			assert.Greater(t, latest.Order, existing.Order)
		}
	}
}

func TestAdd_DedupesDraftTags(t *testing.T) {
	m, _ := newTestManager(t)

	got, err := m.Add(Draft{Title: "t", Tags: []string{"home", "work", "home"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, got.Tags)
}

func TestUpdate_RecomputesRankAndPreservesImmutableFields(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t", Priority: PriorityLow, TimeFrame: FrameFuture})
	require.NoError(t, err)

	edited := created
	edited.Priority = PriorityHigh
	edited.TimeFrame = FrameToday
	edited.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	edited.Order = 42
	edited.Rank = 7 // caller-set rank is ignored

	got, err := m.Update(edited)
	require.NoError(t, err)

	assert.Equal(t, 3300, got.Rank)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, created.Order, got.Order)
}

func TestUpdate_NotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Update(Task{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(created.ID))
	assert.Empty(t, m.Tasks())

	assert.ErrorIs(t, m.Delete(created.ID), ErrNotFound)
}

func TestArchive_KeepsOrderAndRank(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t", Priority: PriorityHigh, TimeFrame: FrameToday})
	require.NoError(t, err)

	require.NoError(t, m.Archive(created.ID))

	got, err := m.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, got.Status)
	assert.Equal(t, created.Order, got.Order)
	assert.Equal(t, created.Rank, got.Rank)

	// Archived tasks leave the normal view but remain retrievable.
	assert.Empty(t, m.Visible(Filter{}))
	assert.Len(t, m.Visible(Filter{Status: StatusArchived}), 1)

	require.NoError(t, m.Unarchive(created.ID))
	assert.Len(t, m.Visible(Filter{}), 1)
}

func TestToggleComplete_RecomputesRank(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t", Priority: PriorityHigh, TimeFrame: FrameToday})
	require.NoError(t, err)
	require.Equal(t, 3300, created.Rank)

	got, err := m.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, 2800, got.Rank)

	got, err = m.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, 3300, got.Rank)
}

func TestSubtasks_FunnelThroughUpdate(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t", Priority: PriorityMedium, TimeFrame: FrameTomorrow})
	require.NoError(t, err)
	require.Equal(t, 2200, created.Rank)

	withSub, err := m.AddSubtask(created.ID, "part one")
	require.NoError(t, err)
	require.Len(t, withSub.Subtasks, 1)
	// Rank picks up the subtask bonus through the central update path.
	assert.Equal(t, 2250, withSub.Rank)

	toggled, err := m.ToggleSubtask(created.ID, withSub.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Subtasks[0].Completed)

	_, err = m.ToggleSubtask(created.ID, "nope")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)

	removed, err := m.DeleteSubtask(created.ID, withSub.Subtasks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Subtasks)
	assert.Equal(t, 2200, removed.Rank)
}

func TestAddComment_StampsClock(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t"})
	require.NoError(t, err)

	got, err := m.AddComment(created.ID, "first note")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "first note", got.Comments[0].Content)
	assert.False(t, got.Comments[0].CreatedAt.IsZero())

	got, err = m.AddComment(created.ID, "second note")
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.True(t, got.Comments[1].CreatedAt.After(got.Comments[0].CreatedAt))
}

func TestSetTags_DedupesKeepingFirstSeenOrder(t *testing.T) {
	m, _ := newTestManager(t)

	created, err := m.Add(Draft{Title: "t"})
	require.NoError(t, err)

	got, err := m.SetTags(created.ID, []string{"work", "home", "work", "errand", "home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "home", "errand"}, got.Tags)
}

func TestReorder_DensePermutation(t *testing.T) {
	m, _ := newTestManager(t)

	// Same rank so visible order follows manual order.
	for i := 0; i < 3; i++ {
		_, err := m.Add(Draft{Title: fmt.Sprintf("t%d", i), Priority: PriorityMedium, TimeFrame: FrameToday})
		require.NoError(t, err)
	}

	before := m.Visible(Filter{})
	require.Equal(t, []string{"id-1", "id-2", "id-3"}, ids(before))

	require.NoError(t, m.Reorder(Filter{}, 0, 2))

	after := m.Visible(Filter{})
	assert.Equal(t, []string{"id-2", "id-3", "id-1"}, ids(after))

	orders := make([]int, 0, 3)
	for _, tk := range m.Tasks() {
		orders = append(orders, tk.Order)
	}
	sort.Ints(orders)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestReorder_HiddenTasksKeepSlots(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Add(Draft{Title: "a", Priority: PriorityMedium, TimeFrame: FrameToday})
	require.NoError(t, err)
	_, err = m.Add(Draft{Title: "b", Priority: PriorityMedium, TimeFrame: FrameFuture})
	require.NoError(t, err)
	_, err = m.Add(Draft{Title: "c", Priority: PriorityMedium, TimeFrame: FrameToday})
	require.NoError(t, err)

	// Only today's tasks are visible; swap them.
	require.NoError(t, m.Reorder(Filter{TimeFrame: FrameToday}, 0, 1))

	full := m.Tasks()
	SortByOrder(full)
	assert.Equal(t, []string{"id-3", "id-2", "id-1"}, ids(full))

	orders := make([]int, 0, 3)
	for _, tk := range full {
		orders = append(orders, tk.Order)
	}
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestReorder_OutOfRange(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Add(Draft{Title: "only one"})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Reorder(Filter{}, 0, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Reorder(Filter{}, -1, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Reorder(Filter{}, 5, 0), ErrIndexOutOfRange)
}

func TestCommit_FailClosedKeepsLastGoodState(t *testing.T) {
	m, store := newTestManager(t)

	created, err := m.Add(Draft{Title: "keep me"})
	require.NoError(t, err)

	store.failSave = true

	_, err = m.Add(Draft{Title: "lost"})
	require.Error(t, err)
	require.Error(t, m.Delete(created.ID))

	tasks := m.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep me", tasks[0].Title)
}

func TestNewManager_NormalizesLegacySnapshots(t *testing.T) {
	store := &memStore{
		present: true,
		tasks: []Task{
			{ID: "old", Title: "pre-collections task"},
		},
	}
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	got, err := m.Get("old")
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Subtasks)
	assert.NotNil(t, got.Comments)
	assert.Equal(t, StatusActive, got.Status)
}

func TestReplace_ReRanksImportedTasks(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Replace([]Task{
		{ID: "x", Title: "imported", Priority: PriorityHigh, TimeFrame: FrameToday, Rank: 1},
	})
	require.NoError(t, err)

	got, err := m.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 3300, got.Rank)
}
