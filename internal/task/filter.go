package task

import "strings"

// Filter narrows the visible task list. All predicates are
// AND-combined. A zero TimeFrame passes every bucket; Status defaults
// to active when unset.
type Filter struct {
	TimeFrame TimeFrame
	Status    Status
	Query     string
}

func (f Filter) status() Status {
	if f.Status == "" {
		return StatusActive
	}
	return f.Status
}

// Matches reports whether a single task passes the filter.
func (f Filter) Matches(t Task) bool {
	if f.TimeFrame != "" && t.TimeFrame != f.TimeFrame {
		return false
	}
	if t.Status != f.status() {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
