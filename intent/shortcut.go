package intent

import (
	"regexp"
	"strings"

	"github.com/teranos/palette/entity"
)

var (
	symbolShortcut = regexp.MustCompile(`^([#@$])(.+)$`)
	createShortcut = regexp.MustCompile(`^\+(.*)$`)
	urgentShortcut = regexp.MustCompile(`^!(urgent)?$`)
	searchShortcut = regexp.MustCompile(`^/(.+)$`)
	allDigits      = regexp.MustCompile(`^\d+$`)
)

// matchShortcut recognizes symbol-prefixed input. The returned spec has
// everything but the original text and context filled in.
func matchShortcut(normalized string) (CommandSpec, bool) {
	if m := symbolShortcut.FindStringSubmatch(normalized); m != nil {
		value := strings.TrimSpace(m[2])
		if value != "" {
			typ, _ := entity.ForSymbol(m[1][0])
			return CommandSpec{
				Intent:     Go,
				Entities:   []entity.Type{typ},
				Reference:  &Reference{Type: typ, Kind: referenceKind(value), Value: value},
				Confidence: symbolShortcutConfidence,
				Shortcut:   true,
			}, true
		}
	}

	if m := createShortcut.FindStringSubmatch(normalized); m != nil {
		ents := ExtractEntities(strings.TrimSpace(m[1]))
		if len(ents) == 0 {
			ents = []entity.Type{entity.Ticket}
		}
		return CommandSpec{
			Intent:     Create,
			Entities:   ents,
			Confidence: createShortcutConfidence,
			Shortcut:   true,
		}, true
	}

	if urgentShortcut.MatchString(normalized) {
		return CommandSpec{
			Intent:     Show,
			Modifiers:  []Modifier{Urgent},
			Confidence: urgentShortcutConfidence,
			Shortcut:   true,
		}, true
	}

	if m := searchShortcut.FindStringSubmatch(normalized); m != nil {
		if q := strings.TrimSpace(m[1]); q != "" {
			return CommandSpec{
				Intent:      Find,
				SearchQuery: q,
				Confidence:  searchShortcutConfidence,
				Shortcut:    true,
			}, true
		}
	}

	return CommandSpec{}, false
}

func referenceKind(value string) ReferenceKind {
	switch {
	case allDigits.MatchString(value):
		return ReferenceID
	case invoiceCode.MatchString(value), quoteCode.MatchString(value):
		return ReferenceCode
	}
	return ReferenceName
}
