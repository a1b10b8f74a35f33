package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/storage"
)

type fakeRecorder struct {
	mu      sync.Mutex
	saved   []*models.Match
	cleared int
	history []models.MatchResult
}

func (f *fakeRecorder) SaveMatch(_ context.Context, m *models.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, m)
}

func (f *fakeRecorder) ClearMatch(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakeRecorder) AppendHistory(_ context.Context, r models.MatchResult) *models.HistoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, r)
	return &models.HistoryRecord{ID: fmt.Sprintf("rec-%d", len(f.history)), CompletedAt: r.EndedAt, MatchResult: r}
}

func (f *fakeRecorder) lastSaved() *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

type fakeSettings struct {
	values   map[string][]byte
	failSave bool
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: map[string][]byte{}}
}

func (f *fakeSettings) LoadSetting(_ context.Context, key string, dst any) bool {
	raw, ok := f.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (f *fakeSettings) SaveSetting(_ context.Context, key string, value any) bool {
	if f.failSave {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	f.values[key] = raw
	return true
}

type fakeHistory struct {
	records []models.HistoryRecord
}

func (f *fakeHistory) GetHistory(context.Context) []models.HistoryRecord {
	return f.records
}

type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (m *memoryObjectStore) Put(_ context.Context, key, _ string, body []byte) (*storage.PutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return &storage.PutResult{Key: key, Location: "https://cdn.example.test/" + key, Size: int64(len(body))}, nil
}

func (m *memoryObjectStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memoryObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjectStore) PublicURL(key string) string {
	return "https://cdn.example.test/" + key
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func individuals(names ...string) []models.Participant {
	out := make([]models.Participant, 0, len(names))
	for _, n := range names {
		out = append(out, models.NewIndividual(n))
	}
	return out
}
