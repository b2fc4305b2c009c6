package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SerperAPIKey          string
	SerperResultsPerQuery int

	LLMClient        *llm.Client // nil = cleansing disabled, candidates pass through
	CleanseBatchSize int
	CleanseRetries   int

	MaxTargetCount   int
	ScrapeConcurrent int64
	ScrapeTimeout    time.Duration
	ScrapeInterval   time.Duration // politeness delay between candidate starts

	SearchClient *http.Client // Serper API calls
	ScrapeClient *http.Client // candidate site fetches, TLS verify off
}

var cfg Config

// Cfg exposes the engine configuration for other packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration and fills defaults.
func Init(c Config) {
	if c.SerperResultsPerQuery <= 0 {
		c.SerperResultsPerQuery = 100
	}
	if c.CleanseBatchSize <= 0 {
		c.CleanseBatchSize = 50
	}
	if c.CleanseRetries <= 0 {
		c.CleanseRetries = 2
	}
	if c.MaxTargetCount <= 0 {
		c.MaxTargetCount = 300
	}
	if c.ScrapeConcurrent <= 0 {
		c.ScrapeConcurrent = 10
	}
	if c.ScrapeTimeout <= 0 {
		c.ScrapeTimeout = 10 * time.Second
	}
	if c.ScrapeInterval <= 0 {
		c.ScrapeInterval = 200 * time.Millisecond
	}
	if c.SearchClient == nil {
		c.SearchClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.ScrapeClient == nil {
		c.ScrapeClient = NewScrapeClient(c.ScrapeTimeout)
	}
	cfg = c
	Cfg = &cfg
}
