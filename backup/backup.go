// Package backup encodes snapshots as portable JSON documents and merges
// externally supplied documents back into a snapshot. Import follows an
// accept-what-validates policy: each facet is decoded independently and a
// facet that is absent or of the wrong type keeps its current value.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskdeck/model"
)

// ErrMalformed reports an import document that is not valid JSON.
var ErrMalformed = errors.New("malformed backup document")

type document struct {
	Todos      json.RawMessage `json:"todos"`
	Categories json.RawMessage `json:"categories"`
	Settings   json.RawMessage `json:"settings"`
}

// Export renders the snapshot as an indented JSON document suitable for a
// backup file. The output round-trips losslessly through Import.
func Export(snap model.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// Import parses data and merges it into current, returning the merged
// snapshot. A document that is not valid JSON fails with ErrMalformed and
// current is untouched. Otherwise facets merge independently: todos and
// categories replace the current value only when they decode as arrays,
// settings.darkMode only when present and boolean.
func Import(data []byte, current model.Snapshot) (model.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	merged := current.Clone()

	if len(doc.Todos) > 0 {
		var tasks []model.Task
		if err := json.Unmarshal(doc.Todos, &tasks); err == nil && tasks != nil {
			merged.Tasks = tasks
		}
	}

	if len(doc.Categories) > 0 {
		var categories []string
		if err := json.Unmarshal(doc.Categories, &categories); err == nil && categories != nil {
			merged.Categories = categories
		}
	}

	if len(doc.Settings) > 0 {
		var settings struct {
			DarkMode *bool `json:"darkMode"`
		}
		if err := json.Unmarshal(doc.Settings, &settings); err == nil && settings.DarkMode != nil {
			merged.Settings.DarkMode = *settings.DarkMode
		}
	}

	return merged, nil
}

// Filename suggests a backup file name embedding the current date.
func Filename(now time.Time) string {
	return fmt.Sprintf("todo-backup-%s.json", now.Format("2006-01-02"))
}
