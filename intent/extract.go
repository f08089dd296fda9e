package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/teranos/palette/entity"
)

var modifierPatterns = []struct {
	modifier Modifier
	pattern  *regexp.Regexp
}{
	{Urgent, regexp.MustCompile(`\b(urgent|critical|emergency|asap|high priority)\b`)},
	{Overdue, regexp.MustCompile(`\b(overdue|past due|late|unpaid|outstanding)\b`)},
	{Scheduled, regexp.MustCompile(`\b(scheduled|upcoming|today|tomorrow|this week|next week|calendar)\b`)},
	{Mine, regexp.MustCompile(`\b(my|mine)\b|\bassigned to me\b`)},
	{ForClient, regexp.MustCompile(`\bfor (this |the |current |selected )?(client|customer)\b`)},
}

var (
	idReference    = regexp.MustCompile(`(?:^|\s)#?(\d+)(?:\s|$)`)
	invoiceCode    = regexp.MustCompile(`(?i)\b(INV-?\d+)\b`)
	quoteCode      = regexp.MustCompile(`(?i)\b(QUO(?:TE)?-?\d+)\b`)
	capitalizedRun = regexp.MustCompile(`[\p{Lu}][\p{L}\p{N}&.'-]*(?:\s+[\p{Lu}][\p{L}\p{N}&.'-]*)+`)
)

// fillers carry no search meaning
var fillers = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "of": true, "me": true,
	"all": true, "with": true, "to": true, "in": true, "on": true, "is": true,
	"are": true, "where": true, "how": true, "do": true, "i": true, "what": true,
	"which": true, "give": true, "please": true, "named": true, "called": true,
	"about": true, "by": true, "any": true, "some": true, "that": true,
}

var lexiconWords = map[string]bool{}

func init() {
	for _, g := range verbLexicon {
		for _, v := range g.verbs {
			for _, w := range strings.Fields(v) {
				lexiconWords[w] = true
			}
		}
	}
	for _, t := range entity.All() {
		for _, syn := range t.Synonyms() {
			for _, w := range strings.Fields(syn) {
				lexiconWords[w] = true
			}
		}
	}
	for _, w := range []string{
		"urgent", "critical", "emergency", "asap", "high", "priority",
		"overdue", "past", "due", "late", "unpaid", "outstanding",
		"scheduled", "upcoming", "today", "tomorrow", "this", "next", "week", "calendar",
		"my", "mine", "assigned", "current", "selected",
	} {
		lexiconWords[w] = true
	}
	for w := range fillers {
		lexiconWords[w] = true
	}
}

// ExtractEntities returns every entity type whose synonyms occur in the
// normalized text, sorted.
func ExtractEntities(normalized string) []entity.Type {
	var found []entity.Type
	for _, t := range entity.All() {
		for _, syn := range t.Synonyms() {
			if strings.Contains(normalized, syn) {
				found = append(found, t)
				break
			}
		}
	}
	return entity.SortTypes(found)
}

// ExtractModifiers returns the modifiers found in the normalized text.
// FOR_CLIENT is also set when a client is selected in the caller context.
func ExtractModifiers(normalized string, rctx entity.Context) []Modifier {
	var mods []Modifier
	for _, mp := range modifierPatterns {
		if mp.pattern.MatchString(normalized) {
			mods = append(mods, mp.modifier)
		}
	}
	if rctx.HasClient() {
		mods = append(mods, ForClient)
	}
	return sortModifiers(mods)
}

// ExtractReference finds a pointer to a concrete record in the original
// (case-preserving) text. The first matching rule wins: numeric id, invoice
// or quote code, capitalized multi-word name.
func ExtractReference(original string, entities []entity.Type) *Reference {
	text := strings.TrimSpace(original)
	if text == "" {
		return nil
	}

	var typ entity.Type
	if len(entities) == 1 {
		typ = entities[0]
	}

	if m := idReference.FindStringSubmatch(text); m != nil {
		return &Reference{Type: typ, Kind: ReferenceID, Value: m[1]}
	}
	if m := invoiceCode.FindStringSubmatch(text); m != nil {
		return &Reference{Type: entity.Invoice, Kind: ReferenceCode, Value: m[1]}
	}
	if m := quoteCode.FindStringSubmatch(text); m != nil {
		return &Reference{Type: entity.Quote, Kind: ReferenceCode, Value: m[1]}
	}
	for _, run := range capitalizedRun.FindAllString(text, -1) {
		if name := trimLexicon(strings.Fields(run)); len(name) >= 2 {
			return &Reference{Type: typ, Kind: ReferenceName, Value: strings.Join(name, " ")}
		}
	}
	return nil
}

// trimLexicon drops palette vocabulary from both ends of a capitalized run,
// so "Show Acme Corporation Tickets" yields "Acme Corporation".
func trimLexicon(words []string) []string {
	isLexicon := func(w string) bool {
		return lexiconWords[strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))]
	}
	for len(words) > 0 && isLexicon(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isLexicon(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return words
}

// searchTerms strips verbs, entity words, modifier words and fillers from
// normalized text, leaving what the user is looking for.
func searchTerms(normalized string) string {
	var kept []string
	for _, w := range strings.Fields(normalized) {
		if !lexiconWords[strings.TrimFunc(w, unicode.IsPunct)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
