package cmd

import (
	"context"
	"fmt"

	"editoria/internal/ai"
	"editoria/internal/config"
	"editoria/internal/logger"
	"editoria/internal/store"
)

// app bundles the services the subcommands share. It is built per
// invocation from the loaded configuration.
type app struct {
	cfg   *config.Config
	store *store.Store
	prefs *ai.FilePreferences
	orch  *ai.Orchestrator
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.Cache.Directory,
		config.ParseDuration(cfg.Cache.TTL.Pages, store.DefaultPageTTL),
		config.ParseDuration(cfg.Cache.TTL.EventSearches, store.DefaultEventTTL))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	prefs := ai.NewFilePreferences(cfg.App.DataDir)
	return &app{
		cfg:   cfg,
		store: st,
		prefs: prefs,
		orch:  ai.NewOrchestrator(registry, prefs),
	}, nil
}

// buildRegistry registers every provider whose API key is configured.
// Priorities are fixed: Gemini first, then the OpenAI-compatible
// fallbacks in cost order.
func buildRegistry(ctx context.Context, cfg *config.Config) (*ai.Registry, error) {
	registry := ai.NewRegistry()

	if cfg.AI.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.Gemini)
		if err != nil {
			return nil, fmt.Errorf("configuring gemini: %w", err)
		}
		registry.Register(gemini, 1)
	}

	compatible := []struct {
		name     string
		cfg      config.OpenAICompatible
		priority int
	}{
		{"openrouter", cfg.AI.OpenRouter, 2},
		{"together", cfg.AI.Together, 3},
		{"groq", cfg.AI.Groq, 4},
	}
	for _, c := range compatible {
		if c.cfg.APIKey == "" {
			continue
		}
		provider, err := ai.NewOpenAIProvider(c.name, c.cfg)
		if err != nil {
			return nil, fmt.Errorf("configuring %s: %w", c.name, err)
		}
		registry.Register(provider, c.priority)
	}

	if len(registry.Names()) == 0 {
		logger.Warn("No AI providers configured; generation commands will fail")
	}
	return registry, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err.Error())
	}
}

// recordAnalytics logs the operation event, tolerating store failures.
func (a *app) recordAnalytics(kind, payload string) {
	if err := a.store.RecordAnalytics(kind, payload); err != nil {
		logger.Warn("Failed to record analytics event", "kind", kind, "error", err.Error())
	}
}
