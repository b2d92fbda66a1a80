package task

import "math"

// Summary aggregates counts for the sidebar and the stats command.
type Summary struct {
	Today     int
	Tomorrow  int
	Future    int
	Completed int
	Archived  int
	Tags      []TagCount
}

// TagCount pairs a tag with the number of tasks carrying it, in
// first-seen tag order.
type TagCount struct {
	Tag   string
	Count int
}

// Summarize counts active tasks per time frame, completed and archived
// totals, and per-tag usage.
func Summarize(tasks []Task) Summary {
	var s Summary
	counts := map[string]int{}
	var order []string
	for _, t := range tasks {
		if t.Status == StatusArchived {
			s.Archived++
			continue
		}
		switch t.TimeFrame {
		case FrameToday:
			s.Today++
		case FrameTomorrow:
			s.Tomorrow++
		case FrameFuture:
			s.Future++
		}
		if t.Completed {
			s.Completed++
		}
		for _, tag := range t.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	for _, tag := range order {
		s.Tags = append(s.Tags, TagCount{Tag: tag, Count: counts[tag]})
	}
	return s
}

// SubtaskProgress returns the completed share of a task's subtasks as
// a whole percentage. A task without subtasks reports 0.
func SubtaskProgress(t Task) int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(t.Subtasks)) * 100))
}
