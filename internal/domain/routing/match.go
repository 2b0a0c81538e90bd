// Package routing defines the route decision model: which handler wins a
// user query and with what confidence.
package routing

import (
	"regexp"
	"strings"
)

// HandlerType says whether a route resolves to built-in core logic or to a
// plugin.
type HandlerType string

const (
	// HandlerCore routes to the built-in intent engine.
	HandlerCore HandlerType = "core"
	// HandlerPlugin routes to a sandboxed plugin.
	HandlerPlugin HandlerType = "plugin"
)

// IntentUnknown is the pattern assigned when nothing matches. Core is
// always the fallback for unrecognized input.
const IntentUnknown = "unknown"

// RouteMatch is the outcome of deciding who handles a query.
type RouteMatch struct {
	HandlerType   HandlerType `json:"handler_type"`
	HandlerID     string      `json:"handler_id,omitempty"` // plugin id when HandlerType is plugin
	IntentPattern string      `json:"intent_pattern"`
	Confidence    float64     `json:"confidence"`
}

// IsPlugin reports whether the match resolves to a plugin.
func (m *RouteMatch) IsPlugin() bool {
	return m.HandlerType == HandlerPlugin
}

// corePattern pairs a compiled query pattern with the core intent it maps
// to. The table is fixed: core intents are compiled into the host, not
// discovered.
type corePattern struct {
	re     *regexp.Regexp
	intent string
}

// coreConfidence is the confidence assigned to core table matches.
const coreConfidence = 0.95

// unknownConfidence is the confidence of the core fallback route.
const unknownConfidence = 0.3

// MinPluginConfidence is the floor a plugin intent must clear to win a
// route. At or below this, the query falls through to core handling.
const MinPluginConfidence = 0.4

var corePatterns = []corePattern{
	// Package management
	{regexp.MustCompile(`(?i)^install\s+(.+)`), "install"},
	{regexp.MustCompile(`(?i)^remove\s+(.+)`), "remove"},
	{regexp.MustCompile(`(?i)^uninstall\s+(.+)`), "remove"},
	{regexp.MustCompile(`(?i)^search\s+(.+)`), "search"},
	{regexp.MustCompile(`(?i)^find\s+(.+)`), "search"},

	// Configuration
	{regexp.MustCompile(`(?i)^generate\s+(.+)\s+config`), "generate_config"},
	{regexp.MustCompile(`(?i)^create\s+(.+)\s+configuration`), "generate_config"},
	{regexp.MustCompile(`(?i)^show\s+config`), "show_config"},

	// System management
	{regexp.MustCompile(`(?i)^rollback`), "rollback"},
	{regexp.MustCompile(`(?i)^update\s+system`), "update"},
	{regexp.MustCompile(`(?i)^check\s+health`), "health_check"},

	// Settings
	{regexp.MustCompile(`(?i)^settings`), "settings"},
	{regexp.MustCompile(`(?i)^preferences`), "settings"},
	{regexp.MustCompile(`(?i)^configure$`), "settings"},
}

// MatchCore matches a normalized query against the core intent table.
func MatchCore(query string) (*RouteMatch, bool) {
	for _, cp := range corePatterns {
		if cp.re.MatchString(query) {
			return &RouteMatch{
				HandlerType:   HandlerCore,
				IntentPattern: cp.intent,
				Confidence:    coreConfidence,
			}, true
		}
	}
	return nil, false
}

// Fallback returns the low-confidence core route for unmatched input.
func Fallback() *RouteMatch {
	return &RouteMatch{
		HandlerType:   HandlerCore,
		IntentPattern: IntentUnknown,
		Confidence:    unknownConfidence,
	}
}

// CoreIntentCount reports the size of the core table, for routing reports.
func CoreIntentCount() int {
	return len(corePatterns)
}

// Normalize canonicalizes a query for matching and cache keying.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// focusKeywords mark the attention/productivity domain: a query and a
// pattern that both touch it are related even without word overlap.
var focusKeywords = map[string]struct{}{
	"focus":        {},
	"concentrate":  {},
	"work":         {},
	"distraction":  {},
	"distractions": {},
	"attention":    {},
	"productivity": {},
}

// PatternConfidence scores how well a normalized query matches a declared
// intent pattern. The ladder is fixed policy:
//
//	1.0  exact match
//	0.8  pattern contained in query
//	0.7  every pattern word present in query
//	0.5  query and pattern share the focus domain
//	>0.4 partial word overlap, scaled by coverage
//	0.0  unrelated
func PatternConfidence(query, pattern string) float64 {
	pattern = strings.ToLower(pattern)

	if query == pattern {
		return 1.0
	}

	if pattern != "" && strings.Contains(query, pattern) {
		return 0.8
	}

	patternWords := fieldsSet(pattern)
	queryWords := fieldsSet(query)
	if len(patternWords) == 0 {
		return 0.0
	}

	overlap := 0
	for w := range patternWords {
		if _, ok := queryWords[w]; ok {
			overlap++
		}
	}

	if overlap == len(patternWords) {
		return 0.7
	}

	if hasFocusWord(patternWords) && hasFocusWord(queryWords) {
		return 0.5
	}

	if overlap > 0 {
		return 0.4 + 0.2*float64(overlap)/float64(len(patternWords))
	}

	return 0.0
}

func fieldsSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func hasFocusWord(words map[string]struct{}) bool {
	for w := range words {
		if _, ok := focusKeywords[w]; ok {
			return true
		}
	}
	return false
}
