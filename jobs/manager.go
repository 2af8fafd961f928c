package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shortsbot/logger"
)

const defaultMaxLogs = 50

// Manager wraps a Store with status transitions and a shared log of the
// most recent events.
type Manager struct {
	store Store

	mu      sync.RWMutex
	logs    []LogEntry
	maxLogs int
}

// NewManager creates a new job manager
func NewManager(store Store) *Manager {
	return &Manager{
		store:   store,
		logs:    make([]LogEntry, 0),
		maxLogs: defaultMaxLogs, // Keep last 50 log entries
	}
}

// AddLog adds a log entry (thread-safe)
func (m *Manager) AddLog(jobID, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Sugar().Infof("[%s] %s", jobID, msg)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, LogEntry{Timestamp: time.Now(), JobID: jobID, Message: msg})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// Logs returns a copy of the retained entries, oldest first.
func (m *Manager) Logs() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]LogEntry{}, m.logs...)
}

// Create stores a new job.
func (m *Manager) Create(ctx context.Context, job *Job) error {
	if err := m.store.Save(ctx, job); err != nil {
		return err
	}
	m.AddLog(job.ID, "Job created (topic=%q metadata=%q)", job.Topic, job.MetadataPath)
	return nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Job, error) {
	return m.store.Get(ctx, id)
}

func (m *Manager) List(ctx context.Context, limit int) ([]*Job, error) {
	return m.store.List(ctx, limit)
}

// Update applies fn to the stored job and saves it.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Job)) (*Job, error) {
	j, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(j)
	j.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// SetStatus moves a job to status.
func (m *Manager) SetStatus(ctx context.Context, id string, status Status) error {
	if _, err := m.Update(ctx, id, func(j *Job) { j.Status = status }); err != nil {
		return err
	}
	m.AddLog(id, "Status: %s", status)
	return nil
}

// Fail marks a job failed with cause.
func (m *Manager) Fail(ctx context.Context, id string, cause error) error {
	_, err := m.Update(ctx, id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = cause.Error()
	})
	m.AddLog(id, "Error: %v", cause)
	return err
}
