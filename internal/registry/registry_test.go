package registry

import (
	"testing"
	"time"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

func TestCreateAndGet(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("東京 IT", 50, nil)
	if job.ID == "" {
		t.Fatal("empty job id")
	}
	if job.Status != engine.StatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}

	got := r.Get(job.ID)
	if got == nil || got.Keyword != "東京 IT" || got.TargetCount != 50 {
		t.Fatalf("Get = %+v", got)
	}
	if r.Get("nope") != nil {
		t.Error("unknown id returned a job")
	}
}

func TestForwardOnlyTransitions(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("k", 10, nil)

	r.UpdateStatus(job.ID, engine.StatusScraping, 50, "scraping")
	r.UpdateStatus(job.ID, engine.StatusSearching, 10, "backward")
	got := r.Get(job.ID)
	if got.Status != engine.StatusScraping {
		t.Errorf("status = %q, backward transition applied", got.Status)
	}
	if got.Progress != 50 {
		t.Errorf("progress = %d, decreased", got.Progress)
	}
	if got.Message == "backward" {
		t.Error("backward message applied")
	}
}

func TestProgressMonotonic(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("k", 10, nil)

	r.UpdateStatus(job.ID, engine.StatusSearching, 30, "a")
	r.UpdateStatus(job.ID, engine.StatusSearching, 20, "b")
	got := r.Get(job.ID)
	if got.Progress != 30 {
		t.Errorf("progress = %d, want 30", got.Progress)
	}
	// Message still updates on same-status calls.
	if got.Message != "b" {
		t.Errorf("message = %q, want b", got.Message)
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("k", 10, nil)

	records := []engine.EnrichedRecord{{CompanyName: "株式会社テスト"}}
	r.Complete(job.ID, records, "https://sheets.example.com/1", "done")
	r.UpdateStatus(job.ID, engine.StatusSearching, 10, "late update")
	r.Fail(job.ID, "late failure")

	got := r.Get(job.ID)
	if got.Status != engine.StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}
	if got.Progress != 100 || got.ResultCount != 1 {
		t.Errorf("progress = %d, result_count = %d", got.Progress, got.ResultCount)
	}
	if got.SpreadsheetURL != "https://sheets.example.com/1" {
		t.Errorf("spreadsheet_url = %q", got.SpreadsheetURL)
	}
}

func TestFailFromAnyState(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("k", 10, nil)
	r.UpdateStatus(job.ID, engine.StatusSaving, 90, "saving")
	r.Fail(job.ID, "sink exploded")

	got := r.Get(job.ID)
	if got.Status != engine.StatusFailed {
		t.Errorf("status = %q", got.Status)
	}
	if got.Error != "sink exploded" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestTTLSweepAndExpiry(t *testing.T) {
	r := New(time.Hour)
	now := time.Now()
	r.now = func() time.Time { return now }

	old := r.Create("old", 10, nil)

	// Jump past the TTL; the old job is invisible and swept on next create.
	now = now.Add(2 * time.Hour)
	if r.Get(old.ID) != nil {
		t.Error("expired job still visible")
	}
	r.Create("new", 10, nil)

	r.mu.RLock()
	_, stillThere := r.jobs[old.ID]
	r.mu.RUnlock()
	if stillThere {
		t.Error("expired job not swept on create")
	}
}

func TestDelete(t *testing.T) {
	r := New(time.Hour)
	job := r.Create("k", 10, nil)
	if !r.Delete(job.ID) {
		t.Error("delete returned false for live job")
	}
	if r.Delete(job.ID) {
		t.Error("delete returned true for missing job")
	}
	if r.Get(job.ID) != nil {
		t.Error("deleted job still visible")
	}
}

func TestListSkipsExpired(t *testing.T) {
	r := New(time.Hour)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Create("a", 10, nil)
	now = now.Add(2 * time.Hour)
	r.Create("b", 10, nil)

	jobs := r.List(0)
	if len(jobs) != 1 || jobs[0].Keyword != "b" {
		t.Fatalf("List = %+v", jobs)
	}
}

func TestListNewestFirstAndLimited(t *testing.T) {
	r := New(time.Hour)
	now := time.Now()
	r.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		r.Create(k, 10, nil)
		now = now.Add(time.Minute)
	}

	jobs := r.List(0)
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	for i, want := range []string{"c", "b", "a"} {
		if jobs[i].Keyword != want {
			t.Errorf("jobs[%d] = %q, want %q", i, jobs[i].Keyword, want)
		}
	}

	jobs = r.List(2)
	if len(jobs) != 2 || jobs[0].Keyword != "c" || jobs[1].Keyword != "b" {
		t.Fatalf("limited List = %+v", jobs)
	}
}
