package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"taskdeck/model"
)

func sampleSnapshot(label string) model.Snapshot {
	created := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	completed := created.Add(3 * time.Hour)
	return model.Snapshot{
		Tasks: []model.Task{
			{
				ID:          "task-" + label,
				Text:        "Task " + label,
				Category:    "Work",
				Completed:   true,
				CreatedAt:   created,
				CompletedAt: &completed,
			},
			{
				ID:        "open-" + label,
				Text:      "Open " + label,
				CreatedAt: created,
			},
		},
		Categories: []string{"Work"},
		Settings:   model.Settings{DarkMode: true},
	}
}

func TestFileKVGetMissingKey(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	if _, err := kv.Get("todos"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileKVSetThenGet(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "nested", "state"))
	want := []byte(`{"darkMode":true}`)

	if err := kv.Set("settings", want); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := kv.Get("settings")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("value mismatch\nwant=%s\ngot=%s", want, got)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	g := NewGateway(kv)
	want := sampleSnapshot("a")

	if _, ok := g.Load(); !ok {
		t.Fatalf("load of empty store should report ok")
	}
	if !g.Save(want) {
		t.Fatalf("save failed")
	}

	g2 := NewGateway(kv)
	got, ok := g2.Load()
	if !ok {
		t.Fatalf("load failed")
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("save/load mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestLoadMissingKeysReturnsDefaults(t *testing.T) {
	g := NewGateway(NewFileKV(t.TempDir()))

	snap, ok := g.Load()
	if !ok {
		t.Fatalf("expected absent keys to load cleanly")
	}
	if !reflect.DeepEqual(model.NewSnapshot(), snap) {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestLoadCorruptFacetDoesNotBlockOthers(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	want := sampleSnapshot("a")

	tasksJSON, err := json.Marshal(want.Tasks)
	if err != nil {
		t.Fatalf("marshal tasks failed: %v", err)
	}
	if err := kv.Set("todos", tasksJSON); err != nil {
		t.Fatalf("seed tasks failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "categories.json"), []byte("{invalid"), 0o644); err != nil {
		t.Fatalf("seed corrupt categories failed: %v", err)
	}

	snap, ok := NewGateway(kv).Load()
	if ok {
		t.Fatalf("expected load to report the corrupt facet")
	}
	if !reflect.DeepEqual(want.Tasks, snap.Tasks) {
		t.Fatalf("expected tasks to survive corrupt categories\nwant=%+v\ngot=%+v", want.Tasks, snap.Tasks)
	}
	if len(snap.Categories) != 0 {
		t.Fatalf("expected categories to default empty, got %v", snap.Categories)
	}
}

func TestLoadTypeMismatchedFacetDefaults(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	if err := kv.Set("todos", []byte(`{"not":"an array"}`)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	snap, ok := NewGateway(kv).Load()
	if ok {
		t.Fatalf("expected load to report the mismatched facet")
	}
	if len(snap.Tasks) != 0 {
		t.Fatalf("expected no partial tasks, got %+v", snap.Tasks)
	}
}

func TestSaveSuppressedBeforeFirstLoad(t *testing.T) {
	kv := &countingKV{KV: NewFileKV(t.TempDir())}
	g := NewGateway(kv)

	if g.Save(sampleSnapshot("a")) {
		t.Fatalf("expected save before load to be suppressed")
	}
	g.Schedule(sampleSnapshot("b"))
	g.Close() // would flush a pending write if one had been accepted
	if got := kv.sets(); got != 0 {
		t.Fatalf("expected no writes before first load, got %d", got)
	}
}

func TestSaveReportsFailureWithoutPanic(t *testing.T) {
	kv := &failingKV{}
	g := NewGateway(kv)
	g.Load()

	if g.Save(sampleSnapshot("a")) {
		t.Fatalf("expected save against failing store to return false")
	}
}

func TestScheduleCoalescesBurstIntoOneWrite(t *testing.T) {
	kv := &countingKV{KV: NewFileKV(t.TempDir())}
	g := NewGateway(kv, WithDebounce(50*time.Millisecond))
	g.Load()

	g.Schedule(sampleSnapshot("t0"))
	time.Sleep(10 * time.Millisecond)
	g.Schedule(sampleSnapshot("t1"))
	time.Sleep(10 * time.Millisecond)
	final := sampleSnapshot("t2")
	g.Schedule(final)

	if got := kv.sets(); got != 0 {
		t.Fatalf("expected no write inside the quiescence window, got %d", got)
	}

	time.Sleep(150 * time.Millisecond)
	if got := kv.sets(); got != 3 { // one write, three facets
		t.Fatalf("expected exactly one coalesced write (3 facet sets), got %d sets", got)
	}

	got, ok := NewGateway(kv.KV).Load()
	if !ok {
		t.Fatalf("reload failed")
	}
	if !reflect.DeepEqual(final, got) {
		t.Fatalf("expected last scheduled snapshot to win\nwant=%+v\ngot=%+v", final, got)
	}
}

func TestCloseFlushesPendingWrite(t *testing.T) {
	kv := &countingKV{KV: NewFileKV(t.TempDir())}
	g := NewGateway(kv, WithDebounce(time.Hour))
	g.Load()

	want := sampleSnapshot("pending")
	g.Schedule(want)
	g.Close()

	if got := kv.sets(); got != 3 {
		t.Fatalf("expected close to flush the pending write, got %d sets", got)
	}
	got, _ := NewGateway(kv.KV).Load()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("flushed snapshot mismatch\nwant=%+v\ngot=%+v", want, got)
	}

	g.Close() // idempotent, nothing left to flush
	if got := kv.sets(); got != 3 {
		t.Fatalf("expected no extra writes on second close, got %d sets", got)
	}
}

type countingKV struct {
	KV
	mu sync.Mutex
	n  int
}

func (kv *countingKV) Set(key string, value []byte) error {
	kv.mu.Lock()
	kv.n++
	kv.mu.Unlock()
	return kv.KV.Set(key, value)
}

func (kv *countingKV) sets() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.n
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error) { return nil, ErrNotFound }

func (failingKV) Set(string, []byte) error { return errors.New("quota exceeded") }
