package resolve

import (
	"regexp"
	"strings"

	"github.com/teranos/palette/entity"
)

var (
	invoiceNumber = regexp.MustCompile(`(?i)^(?:inv-?)?(\d+)$`)
	quoteNumber   = regexp.MustCompile(`(?i)^(?:quote-?|quo-?)?(\d+)$`)
	ticketNumber  = regexp.MustCompile(`^#?(\d+)$`)
)

// CanonicalCodes lists every stored code form an identifier may take for
// types with a numbering scheme. Other types, and identifiers that are not
// codes, yield nil.
func CanonicalCodes(t entity.Type, identifier string) []string {
	id := strings.TrimSpace(identifier)

	switch t {
	case entity.Invoice:
		if m := invoiceNumber.FindStringSubmatch(id); m != nil {
			n := m[1]
			return []string{n, "INV-" + n, "INV" + n}
		}
	case entity.Quote:
		if m := quoteNumber.FindStringSubmatch(id); m != nil {
			n := m[1]
			return []string{n, "QUOTE-" + n, "QUOTE" + n, "QUO-" + n}
		}
	case entity.Ticket:
		if m := ticketNumber.FindStringSubmatch(id); m != nil {
			n := m[1]
			return []string{n, "#" + n}
		}
	}
	return nil
}
