package ai

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"editoria/internal/logger"
)

// QuarantineWindow is how long a failed provider stays out of rotation.
// Expiry is checked on read; a provider past its window becomes retryable
// again, not necessarily successful.
const QuarantineWindow = 5 * time.Minute

// FallbackResult is the outcome of a successful fallback run.
type FallbackResult struct {
	Text     string
	Sources  []string
	Provider string // Name of the provider that produced the text
}

// Orchestrator tries providers in (preferred-first, then ascending
// priority) order, quarantining ones that fail. It is an explicit service
// object constructed once at startup; there is no package-level state.
type Orchestrator struct {
	registry *Registry
	prefsRepo PreferencesRepository

	mu          sync.Mutex
	quarantined map[string]time.Time // Provider name -> retryable-again time
	now         func() time.Time
}

// NewOrchestrator builds an orchestrator over the given registry and
// preferences repository.
func NewOrchestrator(registry *Registry, prefsRepo PreferencesRepository) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		prefsRepo:   prefsRepo,
		quarantined: make(map[string]time.Time),
		now:         time.Now,
	}
}

// GenerateWithFallback runs the prompt through the first healthy,
// enabled provider, falling through on failure. A single attempt is made
// per provider per invocation.
func (o *Orchestrator) GenerateWithFallback(ctx context.Context, prompt string, opts Options) (*FallbackResult, error) {
	candidates := o.candidates()
	if len(candidates) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	var attempted []string
	var lastProvider string
	var lastErr error

	for _, provider := range candidates {
		name := provider.Name()
		attempted = append(attempted, name)

		result, err := provider.Generate(ctx, prompt, opts)
		if err == nil && strings.TrimSpace(result.Text) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			logger.Warn("AI provider failed, quarantining", "provider", name, "error", err.Error())
			o.quarantine(name)
			lastProvider = name
			lastErr = err
			continue
		}

		return &FallbackResult{
			Text:     result.Text,
			Sources:  result.Sources,
			Provider: name,
		}, nil
	}

	return nil, &AggregateError{
		Attempted:    attempted,
		LastProvider: lastProvider,
		LastErr:      lastErr,
	}
}

// candidates builds the ordered provider list: registered, user-enabled,
// not quarantined; preferred provider first, then ascending priority.
func (o *Orchestrator) candidates() []Provider {
	prefs, err := o.prefsRepo.Load()
	if err != nil {
		logger.Warn("Failed to load provider preferences, using defaults", "error", err.Error())
		prefs = Preferences{}
	}

	descriptors := o.registry.Descriptors()
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Priority < descriptors[j].Priority
	})

	var preferred Provider
	var rest []Provider
	for _, d := range descriptors {
		name := d.Provider.Name()
		if !prefs.IsEnabled(name) || o.isQuarantined(name) {
			continue
		}
		if name == prefs.Preferred && preferred == nil {
			preferred = d.Provider
			continue
		}
		rest = append(rest, d.Provider)
	}

	if preferred != nil {
		return append([]Provider{preferred}, rest...)
	}
	return rest
}

// quarantine marks a provider unavailable until the window elapses.
func (o *Orchestrator) quarantine(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quarantined[name] = o.now().Add(QuarantineWindow)
}

func (o *Orchestrator) isQuarantined(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	until, ok := o.quarantined[name]
	if !ok {
		return false
	}
	if o.now().After(until) {
		delete(o.quarantined, name)
		return false
	}
	return true
}

// ProviderStatus describes one registered provider for display.
type ProviderStatus struct {
	Name        string
	Priority    int
	Enabled     bool
	Preferred   bool
	Quarantined bool
}

// Status reports the current state of every registered provider.
func (o *Orchestrator) Status() []ProviderStatus {
	prefs, err := o.prefsRepo.Load()
	if err != nil {
		prefs = Preferences{}
	}

	var statuses []ProviderStatus
	for _, d := range o.registry.Descriptors() {
		name := d.Provider.Name()
		statuses = append(statuses, ProviderStatus{
			Name:        name,
			Priority:    d.Priority,
			Enabled:     prefs.IsEnabled(name),
			Preferred:   prefs.Preferred == name,
			Quarantined: o.isQuarantined(name),
		})
	}
	return statuses
}
