// Package registry keeps asynchronous search jobs in memory. Entries expire
// after a TTL and status transitions only move forward.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

// Job is one asynchronous search run.
type Job struct {
	ID             string                  `json:"id"`
	Keyword        string                  `json:"keyword"`
	TargetCount    int                     `json:"target_count"`
	InitialQueries []string                `json:"initial_queries,omitempty"`
	Status         string                  `json:"status"`
	Progress       int                     `json:"progress"`
	Message        string                  `json:"message"`
	Error          string                  `json:"error,omitempty"`
	ResultCount    int                     `json:"result_count"`
	SpreadsheetURL string                  `json:"spreadsheet_url,omitempty"`
	Results        []engine.EnrichedRecord `json:"results,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// statusOrder ranks the lifecycle; transitions may never decrease the rank.
// failed is terminal and reachable from anywhere.
var statusOrder = map[string]int{
	engine.StatusPending:   0,
	engine.StatusSearching: 1,
	engine.StatusScraping:  2,
	engine.StatusSaving:    3,
	engine.StatusCompleted: 4,
	engine.StatusFailed:    5,
}

// terminal statuses stop progress updates.
func terminal(status string) bool {
	return status == engine.StatusCompleted || status == engine.StatusFailed
}

// Registry is a TTL-bounded in-memory job store.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

// New creates a registry whose entries expire ttl after creation.
func New(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new pending job and sweeps expired entries.
func (r *Registry) Create(keyword string, targetCount int, initialQueries []string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	now := r.now()
	job := &Job{
		ID:             uuid.NewString(),
		Keyword:        keyword,
		TargetCount:    targetCount,
		InitialQueries: initialQueries,
		Status:         engine.StatusPending,
		Message:        "ジョブを受け付けました",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.jobs[job.ID] = job
	return job.clone()
}

// Get returns a snapshot of the job, or nil when unknown or expired.
func (r *Registry) Get(id string) *Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok || r.now().Sub(job.CreatedAt) > r.ttl {
		return nil
	}
	return job.clone()
}

// defaultListLimit caps List when the caller passes no limit.
const defaultListLimit = 100

// List returns snapshots of up to limit live jobs, newest first.
func (r *Registry) List(limit int) []*Job {
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if r.now().Sub(job.CreatedAt) > r.ttl {
			continue
		}
		out = append(out, job.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Delete removes a job. Returns false when the job was not present.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return false
	}
	delete(r.jobs, id)
	return true
}

// UpdateStatus moves a job forward in the lifecycle. Backward transitions and
// progress decreases are ignored, failed is always accepted.
func (r *Registry) UpdateStatus(id, status string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	if terminal(job.Status) {
		return
	}
	if statusOrder[status] < statusOrder[job.Status] {
		slog.Debug("backward status transition ignored",
			slog.String("job", id),
			slog.String("from", job.Status),
			slog.String("to", status))
		return
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	if message != "" {
		job.Message = message
	}
	job.UpdatedAt = r.now()
}

// Complete marks a job finished with its results.
func (r *Registry) Complete(id string, records []engine.EnrichedRecord, spreadsheetURL, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || terminal(job.Status) {
		return
	}
	job.Status = engine.StatusCompleted
	job.Progress = 100
	job.Message = message
	job.ResultCount = len(records)
	job.Results = records
	job.SpreadsheetURL = spreadsheetURL
	job.UpdatedAt = r.now()
}

// Fail marks a job failed from any state.
func (r *Registry) Fail(id, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || terminal(job.Status) {
		return
	}
	job.Status = engine.StatusFailed
	job.Error = errMsg
	job.Message = "ジョブが失敗しました"
	job.UpdatedAt = r.now()
}

func (r *Registry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, job := range r.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			slog.Debug("expired job swept", slog.String("job", id))
		}
	}
}

func (j *Job) clone() *Job {
	cp := *j
	if j.InitialQueries != nil {
		cp.InitialQueries = append([]string(nil), j.InitialQueries...)
	}
	if j.Results != nil {
		cp.Results = append([]engine.EnrichedRecord(nil), j.Results...)
	}
	return &cp
}
