package fewshot

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mwiater/fewshot/internal/appconfig"
	"github.com/mwiater/fewshot/internal/cache"
	"github.com/mwiater/fewshot/internal/completion"
	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/evaluation"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/metrics"
	"github.com/mwiater/fewshot/internal/project"
	"github.com/mwiater/fewshot/internal/providerfactory"
	"github.com/mwiater/fewshot/internal/providers"
	"github.com/mwiater/fewshot/internal/report"
)

// session holds the resources shared by every run in one process.
type session struct {
	cfg        *appconfig.Config
	project    project.Project
	dataset    *dataset.Store
	cache      *cache.Cache
	aggregator *metrics.Aggregator
	provider   providers.ChatProvider
	client     *completion.Client
	reports    *report.Store
}

// openSession connects the dataset, loads the completion cache and builds
// the provider chain described by cfg.
func openSession(cfg *appconfig.Config, echo bool) (*session, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	s := &session{
		cfg:     cfg,
		project: project.New(cfg.DataRoot(), cfg.ProjectName()),
	}
	s.reports = report.NewStore(s.project.ReportsDir())

	store, err := dataset.Open(cfg.DatasetDriver(), cfg.DatasetDSN())
	if err != nil {
		return nil, err
	}
	s.dataset = store

	c, err := cache.Open(cache.DefaultConfig(cfg.CacheDir()))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.cache = c
	n, err := c.Load()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	logging.LogEvent("[CACHE] loaded %d completions from %s", n, cfg.CacheDir())

	s.aggregator = metrics.NewAggregator(filepath.Join(s.project.Root, "provider_metrics.json"))
	provider, err := providerfactory.NewChatProvider(cfg, s.aggregator)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.provider = provider

	s.client = completion.New(provider, c,
		completion.WithRetryPolicy(completion.RetryPolicy{Delay: cfg.RetryDelay(), MaxAttempts: cfg.MaxAttempts}),
		completion.WithRequestsPerMinute(cfg.RequestsPerMinute),
		completion.WithEcho(echo),
	)
	return s, nil
}

func (s *session) runner(progress bool) *evaluation.Runner {
	return &evaluation.Runner{
		Examples:    s.dataset,
		Preambles:   s.project,
		Completer:   s.client,
		Reports:     s.reports,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxOutputTokens(),
		Stream:      s.cfg.Streaming(),
		Progress:    progress,
	}
}

// summary logs client and provider counters for the process.
func (s *session) summary() {
	if s.client != nil {
		calls, hits, failed := s.client.Stats()
		logging.LogEvent("[RUN] provider calls: %d, cache hits: %d, failed attempts: %d", calls, hits, failed)
	}
	if s.aggregator != nil {
		s.aggregator.WriteSummary(logging.Console())
	}
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() error {
	var errs []error
	if s.provider != nil {
		errs = append(errs, s.provider.Close())
	}
	if s.aggregator != nil {
		errs = append(errs, s.aggregator.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.dataset != nil {
		errs = append(errs, s.dataset.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}
