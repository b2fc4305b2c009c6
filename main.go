// scraping-engine — sales prospect list builder.
//
// Turns a search keyword into a deduplicated, contact-enriched list of
// Japanese company records: Serper search, LLM cleansing, concurrent site
// scraping, spreadsheet sink, optional Slack notifications. Exposed over
// HTTP; see internal/server for the endpoint surface.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"

	"github.com/ai-shine/scraping-engine/internal/collab"
	"github.com/ai-shine/scraping-engine/internal/engine"
	"github.com/ai-shine/scraping-engine/internal/registry"
	"github.com/ai-shine/scraping-engine/internal/server"
)

var (
	version = "dev"
	port    = env.Str("PORT", "8000")
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	serperKey := env.Str("SERPER_API_KEY", "")
	gasURL := env.Str("GAS_WEBHOOK_URL", "")
	slackToken := env.Str("SLACK_BOT_TOKEN", "")
	slackChannel := env.Str("SLACK_CHANNEL_ID", "")

	initEngine(serperKey)

	slog.Info("starting scraping-engine",
		slog.String("version", version),
		slog.String("port", port),
	)

	reg := registry.New(env.Duration("JOB_TTL", 24*time.Hour))

	deps := &server.Deps{
		Registry:      reg,
		SerperAPIKey:  serperKey,
		GASWebhookURL: gasURL,
		SlackBotToken: slackToken,
		NewDomainSource: func() engine.DomainSource {
			return collab.NewGASClient(gasURL)
		},
		NewSink: func() engine.ResultSink {
			return collab.NewGASClient(gasURL)
		},
		NewReporter: func(jobID, channel, threadTS, keyword string) engine.ProgressReporter {
			if channel == "" {
				channel = slackChannel
			}
			return server.NewMultiReporter(
				server.NewRegistryReporter(reg, jobID),
				collab.NewSlackNotifier(slackToken, channel, threadTS, keyword),
			)
		},
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.New(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine(serperKey string) {
	c := engine.Config{
		SerperAPIKey:          serperKey,
		SerperResultsPerQuery: env.Int("SERPER_RESULTS_PER_QUERY", 100),
		CleanseBatchSize:      env.Int("CLEANSE_BATCH_SIZE", 50),
		CleanseRetries:        env.Int("CLEANSE_RETRIES", 2),
		MaxTargetCount:        env.Int("MAX_TARGET_COUNT", 300),
		ScrapeConcurrent:      int64(env.Int("SCRAPE_CONCURRENT", 10)),
		ScrapeTimeout:         env.Duration("SCRAPE_TIMEOUT", 10*time.Second),
		ScrapeInterval:        env.Duration("SCRAPE_INTERVAL", 200*time.Millisecond),
	}

	if apiKey := env.Str("OPENAI_API_KEY", ""); apiKey != "" {
		c.LLMClient = llm.NewClient(
			env.Str("OPENAI_API_BASE", "https://api.openai.com/v1"),
			apiKey,
			env.Str("OPENAI_MODEL", "gpt-4o-mini"),
			llm.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
		)
	} else {
		slog.Warn("OPENAI_API_KEY not set, LLM cleansing disabled")
	}

	engine.Init(c)
}
