// Package store owns the authoritative in-memory task state and its
// mutation operations. Mutations are serialized by the caller (a single
// UI loop); the store itself holds no locks.
package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/model"
)

// Store holds tasks, the accumulated category set and settings. Every
// mutation that changes state emits one snapshot to subscribers after it
// is fully applied, so observers never see a half-applied operation.
type Store struct {
	tasks      []model.Task
	categories []string
	settings   model.Settings

	now   func() time.Time
	newID func() string

	subs []func(model.Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for createdAt/completedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource replaces the unique-id source used at task creation.
func WithIDSource(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks:      []model.Task{},
		categories: []string{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Subscribers must not mutate the store from inside the callback.
func (s *Store) Subscribe(fn func(model.Snapshot)) {
	s.subs = append(s.subs, fn)
}

// Add appends a new open task. Empty text (after trimming) is a silent
// no-op. A non-empty category is inserted into the category set if absent.
func (s *Store) Add(text, category string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	category = strings.TrimSpace(category)
	if category != "" && !contains(s.categories, category) {
		s.categories = append(s.categories, category)
	}
	task := model.Task{
		ID:        s.newID(),
		Text:      text,
		Category:  category,
		CreatedAt: s.now(),
	}
	s.tasks = append(s.tasks, task)
	s.notify()
	return task, true
}

// Toggle flips a task's completed flag. completedAt is stamped on the
// false→true transition and cleared on true→false, never left stale.
func (s *Store) Toggle(id string) bool {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if s.tasks[i].Completed {
			s.tasks[i].Completed = false
			s.tasks[i].CompletedAt = nil
		} else {
			at := s.now()
			s.tasks[i].Completed = true
			s.tasks[i].CompletedAt = &at
		}
		s.notify()
		return true
	}
	return false
}

// UpdateText replaces a task's text. Unknown id or empty text is a no-op.
func (s *Store) UpdateText(id, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Text = text
			s.notify()
			return true
		}
	}
	return false
}

// Delete removes a task, preserving the relative order of the rest.
func (s *Store) Delete(id string) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.notify()
			return true
		}
	}
	return false
}

// Reorder moves the task identified by id to the position immediately
// preceding beforeID, shifting the tasks in between. An empty beforeID
// moves the task to the end. Equal or unknown ids are a no-op.
func (s *Store) Reorder(id, beforeID string) bool {
	if id == beforeID {
		return false
	}
	from := s.indexOf(id)
	if from == -1 {
		return false
	}

	task := s.tasks[from]
	rest := append(s.tasks[:from], s.tasks[from+1:]...)

	to := len(rest)
	if beforeID != "" {
		to = -1
		for i := range rest {
			if rest[i].ID == beforeID {
				to = i
				break
			}
		}
		if to == -1 {
			// anchor missing: restore original order
			s.tasks = insert(rest, from, task)
			return false
		}
	}
	s.tasks = insert(rest, to, task)
	s.notify()
	return true
}

// Snapshot returns a value copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	return model.Snapshot{
		Tasks:      s.tasks,
		Categories: s.categories,
		Settings:   s.settings,
	}.Clone()
}

// Restore wholesale-replaces the store's state. It is called with
// machine-produced snapshots (startup load, merged import) and trusts
// their shape; it does not emit a change notification, so restoring
// never schedules a write by itself.
func (s *Store) Restore(snap model.Snapshot) {
	snap = snap.Clone()
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if snap.Categories == nil {
		snap.Categories = []string{}
	}
	s.tasks = snap.Tasks
	s.categories = snap.Categories
	s.settings = snap.Settings
}

// SetDarkMode updates the theme setting. Settings changes persist like
// any other mutation.
func (s *Store) SetDarkMode(on bool) {
	if s.settings.DarkMode == on {
		return
	}
	s.settings.DarkMode = on
	s.notify()
}

// Tasks returns the ordered task list as a copy.
func (s *Store) Tasks() []model.Task {
	return s.Snapshot().Tasks
}

// Categories returns the category set as a copy.
func (s *Store) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Settings returns the current settings.
func (s *Store) Settings() model.Settings {
	return s.settings
}

func (s *Store) notify() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func insert(tasks []model.Task, index int, task model.Task) []model.Task {
	if index >= len(tasks) {
		return append(tasks, task)
	}
	tasks = append(tasks[:index+1], tasks[index:]...)
	tasks[index] = task
	return tasks
}

func contains(set []string, search string) bool {
	for _, s := range set {
		if s == search {
			return true
		}
	}
	return false
}
