package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haru/internal/task"
)

func sampleTasks() []task.Task {
	created := time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC)
	return []task.Task{
		{
			ID:          "t1",
			Title:       "write report",
			Description: "quarterly numbers",
			Priority:    task.PriorityHigh,
			TimeFrame:   task.FrameToday,
			Status:      task.StatusActive,
			Tags:        []string{"work"},
			Subtasks:    []task.Subtask{{ID: "s1", Title: "draft", Completed: true}},
			Comments:    []task.Comment{{ID: "c1", Content: "note", CreatedAt: created}},
			CreatedAt:   created,
			Rank:        3350,
		},
	}
}

func TestRoundTrip_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTasks(), FormatJSON))

	out, err := Read(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), out)
}

func TestRoundTrip_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTasks(), FormatYAML))

	out, err := Read(&buf, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), out)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleTasks(), "toml"))
}

func TestRead_RejectsNewerVersion(t *testing.T) {
	in := strings.NewReader(`{"version": 99, "tasks": []}`)
	_, err := Read(in, FormatJSON)
	assert.ErrorContains(t, err, "version 99")
}

func TestRead_NormalizesCollections(t *testing.T) {
	in := strings.NewReader(`{"version": 1, "tasks": [{"id": "t1", "title": "bare"}]}`)
	out, err := Read(in, FormatJSON)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].Tags)
	assert.NotNil(t, out[0].Subtasks)
	assert.NotNil(t, out[0].Comments)
	assert.Equal(t, task.StatusActive, out[0].Status)
}
