package task

import "sort"

// SortCanonical orders tasks in place under the rank-then-order
// policy: rank descending, manual order ascending on ties. The sort is
// stable so equal keys keep their relative positions.
func SortCanonical(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Rank != tasks[j].Rank {
			return tasks[i].Rank > tasks[j].Rank
		}
		return tasks[i].Order < tasks[j].Order
	})
}

// SortByOrder arranges tasks by their manual position. This is the
// full sequence reorder operates on.
func SortByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}

// Visible filters and sorts a snapshot of tasks for display. The input
// slice is not modified.
func Visible(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	SortCanonical(out)
	return out
}
