package task

// Priority dominates the rank; urgency and completion shift it within
// a priority band.
var priorityWeights = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

const (
	priorityScale = 1000
	completedDrop = 500
	todayBonus    = 300
	tomorrowBonus = 200
	futureBonus   = 100
	subtasksBonus = 50
)

// Rank maps a task to its derived sort score. It is a pure function of
// priority, completion, time frame, and subtask presence.
func Rank(t Task) int {
	rank := priorityWeights[t.Priority] * priorityScale

	if t.Completed {
		rank -= completedDrop
	}

	switch t.TimeFrame {
	case FrameToday:
		rank += todayBonus
	case FrameTomorrow:
		rank += tomorrowBonus
	case FrameFuture:
		rank += futureBonus
	}

	if len(t.Subtasks) > 0 {
		rank += subtasksBonus
	}

	return rank
}
