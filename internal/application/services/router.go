package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/domain/routing"
)

// Answer bundles a route decision with the execution outcome.
type Answer struct {
	Route  *routing.RouteMatch   `json:"route"`
	Result ports.ExecutionResult `json:"result"`
}

// Suggestion is a plugin the router considers relevant to a query it
// could not route confidently.
type Suggestion struct {
	PluginID    string  `json:"plugin_id"`
	Description string  `json:"description"`
	Relevance   float64 `json:"relevance"`
}

// ConsciousnessRouter decides who answers a query: a plugin that declared
// a matching intent, or the built-in core engine. Plugins are consulted
// first; core patterns win only when no plugin clears the confidence
// threshold, and core is always the fallback for unrecognized input.
type ConsciousnessRouter struct {
	core      ports.IntentExecutor
	factory   ports.SandboxFactory
	logger    *slog.Logger
	cache     map[string]*routing.RouteMatch
	sandboxes map[string]ports.PluginSandbox
	plugins   []DiscoveredPlugin
	mu        sync.RWMutex
	sbMu      sync.Mutex
}

// NewConsciousnessRouter creates a router over the given discovery
// results. Invalid plugins are excluded up front.
func NewConsciousnessRouter(
	discovered []DiscoveredPlugin,
	core ports.IntentExecutor,
	factory ports.SandboxFactory,
	logger *slog.Logger,
) *ConsciousnessRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsciousnessRouter{
		plugins:   ValidPlugins(discovered),
		core:      core,
		factory:   factory,
		logger:    logger,
		cache:     make(map[string]*routing.RouteMatch),
		sandboxes: make(map[string]ports.PluginSandbox),
	}
}

// Route resolves a query to a handler. Results are cached by normalized
// query: repeated queries return the identical match.
func (r *ConsciousnessRouter) Route(query string) *routing.RouteMatch {
	key := routing.Normalize(query)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	match := r.resolve(key)

	r.mu.Lock()
	// Another goroutine may have resolved the same query meanwhile; keep
	// the first stored match so callers always see one instance.
	if existing, ok := r.cache[key]; ok {
		match = existing
	} else {
		r.cache[key] = match
	}
	r.mu.Unlock()

	r.logger.Debug("routed query",
		"query", key,
		"handler", match.HandlerType,
		"intent", match.IntentPattern,
		"confidence", match.Confidence)
	return match
}

// resolve computes a route without touching the cache. Plugin intents are
// scanned before core patterns: plugins extend the system exactly where
// their declarations say they do.
func (r *ConsciousnessRouter) resolve(query string) *routing.RouteMatch {
	var best *routing.RouteMatch
	for _, dp := range r.plugins {
		for _, intent := range dp.Manifest.Capabilities.Intents {
			conf := routing.PatternConfidence(query, intent.Pattern)
			if conf <= routing.MinPluginConfidence {
				continue
			}
			if best == nil || conf > best.Confidence {
				best = &routing.RouteMatch{
					HandlerType:   routing.HandlerPlugin,
					HandlerID:     dp.ID,
					IntentPattern: intent.Pattern,
					Confidence:    conf,
				}
			}
		}
	}
	if best != nil {
		return best
	}

	if match, ok := routing.MatchCore(query); ok {
		return match
	}
	return routing.Fallback()
}

// Execute routes a query and runs the chosen handler. Plugin failures
// are folded into the result envelope; only host-side faults (a plugin
// id with no registered implementation, a failing core engine) surface
// as errors.
func (r *ConsciousnessRouter) Execute(ctx context.Context, query string, payload map[string]any) (*Answer, error) {
	match := r.Route(query)

	if !match.IsPlugin() {
		result, err := r.core.Execute(ctx, match.IntentPattern, query)
		if err != nil {
			return nil, fmt.Errorf("core intent %s failed: %w", match.IntentPattern, err)
		}
		return &Answer{
			Route: match,
			Result: ports.ExecutionResult{
				Success: true,
				Result:  result,
			},
		}, nil
	}

	sandbox, err := r.sandboxFor(ctx, match.HandlerID)
	if err != nil {
		return nil, err
	}

	if payload == nil {
		payload = make(map[string]any)
	}
	payload["query"] = query

	result := sandbox.Execute(ctx, match.IntentPattern, payload)
	return &Answer{Route: match, Result: result}, nil
}

// sandboxFor returns the plugin's sandbox, creating it on first use.
func (r *ConsciousnessRouter) sandboxFor(ctx context.Context, pluginID string) (ports.PluginSandbox, error) {
	r.sbMu.Lock()
	defer r.sbMu.Unlock()

	if sb, ok := r.sandboxes[pluginID]; ok {
		return sb, nil
	}
	sb, err := r.factory.Create(ctx, pluginID)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox for plugin %s: %w", pluginID, err)
	}
	r.sandboxes[pluginID] = sb
	return sb, nil
}

// Suggestions returns up to limit plugins lexically related to a query,
// most relevant first. Relevance is word overlap against the plugin's
// description, principle and declared patterns; zero-overlap plugins are
// omitted.
func (r *ConsciousnessRouter) Suggestions(query string, limit int) []Suggestion {
	queryWords := strings.Fields(routing.Normalize(query))
	if len(queryWords) == 0 {
		return nil
	}

	var out []Suggestion
	for _, dp := range r.plugins {
		var haystack strings.Builder
		haystack.WriteString(dp.Manifest.Plugin.Description)
		haystack.WriteString(" ")
		haystack.WriteString(dp.Manifest.Consciousness.GoverningPrinciple)
		for _, intent := range dp.Manifest.Capabilities.Intents {
			haystack.WriteString(" ")
			haystack.WriteString(intent.Pattern)
		}
		corpus := strings.ToLower(haystack.String())

		hits := 0
		for _, w := range queryWords {
			if strings.Contains(corpus, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		out = append(out, Suggestion{
			PluginID:    dp.ID,
			Description: dp.Manifest.Plugin.Description,
			Relevance:   float64(hits) / float64(len(queryWords)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CacheSize reports how many distinct queries have been routed.
func (r *ConsciousnessRouter) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
