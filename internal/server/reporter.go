package server

import (
	"github.com/ai-shine/scraping-engine/internal/engine"
	"github.com/ai-shine/scraping-engine/internal/registry"
)

// registryReporter mirrors run progress into the job registry.
type registryReporter struct {
	reg   *registry.Registry
	jobID string
}

// NewRegistryReporter builds a reporter that keeps a job's status current.
func NewRegistryReporter(reg *registry.Registry, jobID string) engine.ProgressReporter {
	return &registryReporter{reg: reg, jobID: jobID}
}

func (r *registryReporter) OnStatus(status string, progress int, message string) {
	r.reg.UpdateStatus(r.jobID, status, progress, message)
}

func (r *registryReporter) OnFinal([]engine.EnrichedRecord, string) {}

func (r *registryReporter) OnError(string) {}

// multiReporter fans progress out to several reporters.
type multiReporter []engine.ProgressReporter

// NewMultiReporter combines reporters; nils are dropped.
func NewMultiReporter(reporters ...engine.ProgressReporter) engine.ProgressReporter {
	var out multiReporter
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return engine.NopReporter{}
	}
	return out
}

func (m multiReporter) OnStatus(status string, progress int, message string) {
	for _, r := range m {
		r.OnStatus(status, progress, message)
	}
}

func (m multiReporter) OnFinal(records []engine.EnrichedRecord, spreadsheetURL string) {
	for _, r := range m {
		r.OnFinal(records, spreadsheetURL)
	}
}

func (m multiReporter) OnError(message string) {
	for _, r := range m {
		r.OnError(message)
	}
}
