package learn

import (
	"time"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/intent"
)

// Pattern aggregates outcomes of one usage signature for one user.
type Pattern struct {
	Key          string            `json:"key"`
	Intent       intent.Intent     `json:"intent"`
	Entities     []entity.Type     `json:"entities"`
	Modifiers    []intent.Modifier `json:"modifiers"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	LastUsed     time.Time         `json:"last_used"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Uses is the number of recorded outcomes.
func (p Pattern) Uses() int {
	return p.SuccessCount + p.FailureCount
}

// SuccessRate is successes over outcomes, 0 before any outcome.
func (p Pattern) SuccessRate() float64 {
	return rate(p.SuccessCount, p.Uses())
}

// ContextEntry counts successes of a pattern in one situation
// (workflow and selected client).
type ContextEntry struct {
	ContextKey   string    `json:"context_key"`
	PatternKey   string    `json:"pattern_key"`
	Command      string    `json:"command"` // last command text that hit this entry
	SuccessCount int       `json:"success_count"`
	LastUsed     time.Time `json:"last_used"`
}

// Key is contextKey:patternKey.
func (c ContextEntry) Key() string {
	return c.ContextKey + ":" + c.PatternKey
}

// CommandStat tracks one literal command across all users.
type CommandStat struct {
	Hash         string    `json:"hash"`
	Command      string    `json:"command"`
	UsageCount   int       `json:"usage_count"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	LastUsed     time.Time `json:"last_used"`
}

// SuccessRate is successes over usage, 0 before any use.
func (c CommandStat) SuccessRate() float64 {
	return rate(c.SuccessCount, c.UsageCount)
}

// FailureRecord groups repeated failures of one command for one reason.
type FailureRecord struct {
	Hash      string         `json:"hash"`
	Command   string         `json:"command"`
	Reason    string         `json:"reason"`
	Count     int            `json:"count"`
	Contexts  map[string]int `json:"contexts"` // context key -> occurrences
	FirstSeen time.Time      `json:"first_seen"`
	LastSeen  time.Time      `json:"last_seen"`
}

// Source says where a suggestion came from.
type Source string

const (
	SourcePersonal   Source = "personal"
	SourceContextual Source = "contextual"
	SourceGlobal     Source = "global"
)

// Suggestion is one ranked command proposal.
type Suggestion struct {
	Command    string  `json:"command"`
	Score      float64 `json:"score"`
	Source     Source  `json:"source"`
	PatternKey string  `json:"pattern_key,omitempty"`
	UsageCount int     `json:"usage_count"`
}

// Insights summarizes what the engine learned about a user and tenant.
type Insights struct {
	TopPatterns     []Pattern           `json:"top_patterns"`
	FailingCommands []FailureRecord     `json:"failing_commands"`
	EntityAccess    map[entity.Type]int `json:"entity_access"`
}

func rate(success, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(success) / float64(total)
}
