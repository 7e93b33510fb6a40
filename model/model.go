package model

import "time"

// Task is an individual todo item. Order within the owning snapshot is
// significant and user-controlled; the tasks slice is the source of truth.
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Category    string     `json:"category,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Settings is app-level configuration persisted alongside the tasks.
type Settings struct {
	DarkMode bool `json:"darkMode"`
}

// Snapshot is the full exchangeable state at a point in time. It is the
// unit handed to persistence and to the import/export codec; consumers
// always receive a value copy, never live store internals.
type Snapshot struct {
	Tasks      []Task   `json:"todos"`
	Categories []string `json:"categories"`
	Settings   Settings `json:"settings"`
}

// NewSnapshot returns an initialized empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		Tasks:      []Task{},
		Categories: []string{},
	}
}

// Clone returns a deep value copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	tasks := make([]Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	for i := range tasks {
		if tasks[i].CompletedAt != nil {
			at := *tasks[i].CompletedAt
			tasks[i].CompletedAt = &at
		}
	}
	categories := make([]string, len(s.Categories))
	copy(categories, s.Categories)

	out := s
	out.Tasks = tasks
	out.Categories = categories
	return out
}
