package task

import "time"

// Priority is the coarse importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TimeFrame is the temporal bucket a task is triaged into.
type TimeFrame string

const (
	FrameToday    TimeFrame = "today"
	FrameTomorrow TimeFrame = "tomorrow"
	FrameFuture   TimeFrame = "future"
)

// Status is the lifecycle axis of a task, independent of its time frame.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Subtask is an independently completable child item of a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Comment is an append-only note attached to a task.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is the central entity.
//
// Order is a dense 0..N-1 manual-sort position, reassigned on every
// reorder. Rank is derived from the other fields and recomputed on
// every mutating write; it is never set directly.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	TimeFrame   TimeFrame `json:"timeFrame"`
	Status      Status    `json:"status"`
	Completed   bool      `json:"completed"`
	Tags        []string  `json:"tags"`
	Subtasks    []Subtask `json:"subtasks"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
	Order       int       `json:"order"`
	Rank        int       `json:"rank"`
}

// Draft holds the user-settable fields for a new task.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	TimeFrame   TimeFrame
	Tags        []string
	Subtasks    []Subtask
}

// Normalize fills in zero values left behind by older snapshots:
// collections become empty instead of nil, and tasks written before
// the status field existed come back as active.
func (t *Task) Normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.TimeFrame == "" {
		t.TimeFrame = FrameToday
	}
}

// Clone returns a deep copy so callers can mutate freely without
// aliasing the stored slices.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	c.Comments = append([]Comment{}, t.Comments...)
	return c
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
