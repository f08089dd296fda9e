package intent

import (
	"regexp"
	"strings"
)

type verbGroup struct {
	intent Intent
	verbs  []string
}

// verbLexicon is checked in order; the first intent with a matching verb wins.
var verbLexicon = []verbGroup{
	{Create, []string{"create", "new", "add", "make", "open a", "log a", "raise"}},
	{Show, []string{"show", "list", "display", "view", "see", "get"}},
	{Go, []string{"go to", "goto", "go", "open", "navigate", "jump to", "jump", "visit"}},
	{Find, []string{"find", "search", "lookup", "look up", "look for", "locate"}},
	{Action, []string{"close", "assign", "approve", "send", "complete", "resolve", "archive", "delete", "email", "pay", "escalate", "mark", "update", "reopen"}},
}

var verbPatterns = map[string]*regexp.Regexp{}

var fallbackPatterns = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{Show, regexp.MustCompile(`^(what|which)\b|\bshow me\b|\bgive me\b`)},
	{Find, regexp.MustCompile(`\bwhere is\b|\bwhere are\b|\bhow do i find\b`)},
}

func init() {
	for _, g := range verbLexicon {
		for _, v := range g.verbs {
			verbPatterns[v] = regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`)
		}
	}
}

// classification is the outcome of intent detection on normalized text.
type classification struct {
	intent Intent
	verb   string // matched verb, empty for heuristic or default matches
	signal bool   // false when nothing matched and FIND is the default
}

// Classify returns the intent of normalized text, FIND when nothing matches.
func Classify(normalized string) Intent {
	return classify(normalized).intent
}

func classify(text string) classification {
	for _, g := range verbLexicon {
		for _, v := range g.verbs {
			if strings.HasPrefix(text, v+" ") || verbPatterns[v].MatchString(text) {
				return classification{intent: g.intent, verb: v, signal: true}
			}
		}
	}
	for _, f := range fallbackPatterns {
		if f.pattern.MatchString(text) {
			return classification{intent: f.intent, signal: true}
		}
	}
	return classification{intent: Find}
}

// Verbs returns the verbs that select in, in match order.
func Verbs(in Intent) []string {
	for _, g := range verbLexicon {
		if g.intent == in {
			return append([]string(nil), g.verbs...)
		}
	}
	return nil
}
