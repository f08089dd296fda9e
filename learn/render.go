package learn

import (
	"strings"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/intent"
)

var intentVerbs = map[intent.Intent]string{
	intent.Create: "create",
	intent.Show:   "show",
	intent.Go:     "go to",
	intent.Find:   "find",
	intent.Action: "manage",
}

// modifierWords are rendered in this order before the entity words
var modifierWords = []struct {
	modifier intent.Modifier
	word     string
}{
	{intent.Mine, "my"},
	{intent.Urgent, "urgent"},
	{intent.Overdue, "overdue"},
	{intent.Scheduled, "scheduled"},
}

// Render turns a usage signature back into a command a user could type,
// e.g. SHOW {ticket} {MY, URGENT} -> "show my urgent tickets".
func Render(in intent.Intent, entities []entity.Type, modifiers []intent.Modifier) string {
	verb, ok := intentVerbs[in]
	if !ok {
		verb = strings.ToLower(string(in))
	}
	parts := []string{verb}

	has := make(map[intent.Modifier]bool, len(modifiers))
	for _, m := range modifiers {
		has[m] = true
	}
	for _, mw := range modifierWords {
		if has[mw.modifier] {
			parts = append(parts, mw.word)
		}
	}

	plural := in == intent.Show || in == intent.Find
	ents := entity.SortTypes(entities)
	if len(ents) == 0 {
		if plural {
			parts = append(parts, "items")
		} else {
			parts = append(parts, "item")
		}
	}
	for i, t := range ents {
		if i > 0 {
			parts = append(parts, "and")
		}
		if plural {
			parts = append(parts, t.Plural())
		} else {
			parts = append(parts, string(t))
		}
	}

	if has[intent.ForClient] {
		parts = append(parts, "for client")
	}
	return strings.Join(parts, " ")
}

// RenderKey renders a pattern key; ok is false for malformed keys.
func RenderKey(patternKey string) (string, bool) {
	in, ents, mods, err := intent.ParsePatternKey(patternKey)
	if err != nil {
		return "", false
	}
	return Render(in, ents, mods), true
}
