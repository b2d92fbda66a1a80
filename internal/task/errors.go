package task

import "errors"

var (
	ErrNotFound        = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrIndexOutOfRange = errors.New("reorder index out of range")
)
