// Package export reads and writes task snapshots in JSON or YAML for
// backup and migration.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"haru/internal/storage"
	"haru/internal/task"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write encodes the snapshot envelope in the given format.
func Write(w io.Writer, tasks []task.Task, format string) error {
	snap := storage.Snapshot{Version: storage.SchemaVersion, Tasks: tasks}
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	default:
		return fmt.Errorf("unsupported format %q (json or yaml)", format)
	}
}

// Read decodes a snapshot envelope, rejecting versions newer than this
// build understands. Collections are normalized on the way in.
func Read(r io.Reader, format string) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var snap storage.Snapshot
	switch strings.ToLower(format) {
	case FormatJSON:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q (json or yaml)", format)
	}

	if snap.Version > storage.SchemaVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, storage.SchemaVersion)
	}
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks, nil
}
