package intent

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// abbreviations expand whitespace-delimited words only
var abbreviations = map[string]string{
	"tkt":    "ticket",
	"tkts":   "tickets",
	"tix":    "tickets",
	"inv":    "invoice",
	"invs":   "invoices",
	"qt":     "quote",
	"qts":    "quotes",
	"proj":   "project",
	"projs":  "projects",
	"cust":   "customer",
	"custs":  "customers",
	"cli":    "client",
	"usr":    "user",
	"usrs":   "users",
	"pmt":    "payment",
	"pmts":   "payments",
	"exp":    "expense",
	"loc":    "location",
	"prod":   "product",
	"prods":  "products",
	"kb":     "knowledge base",
	"sched":  "scheduled",
	"pri":    "priority",
	"urg":    "urgent",
	"asgn":   "assigned",
	"req":    "request",
	"contr":  "contract",
	"vend":   "vendor",
	"appt":   "appointment",
	"mgr":    "manager",
	"acct":   "account",
	"srch":   "search",
	"lkup":   "lookup",
	"nav":    "navigate",
	"del":    "delete",
	"assgn":  "assign",
	"upd":    "update",
	"approv": "approve",
}

// typos are replaced wherever they occur, longest first. None of them is a
// substring of the word it corrects.
var typos = map[string]string{
	"tikcet":    "ticket",
	"tickt":     "ticket",
	"ticekt":    "ticket",
	"tiket":     "ticket",
	"invocie":   "invoice",
	"invoce":    "invoice",
	"invioce":   "invoice",
	"cleint":    "client",
	"clinet":    "client",
	"cliet":     "client",
	"urgnet":    "urgent",
	"urgetn":    "urgent",
	"urgant":    "urgent",
	"porject":   "project",
	"projcet":   "project",
	"prject":    "project",
	"overdeu":   "overdue",
	"ovredue":   "overdue",
	"shwo":      "show",
	"craete":    "create",
	"creaet":    "create",
	"serach":    "search",
	"saerch":    "search",
	"qoute":     "quote",
	"qutoe":     "quote",
	"contarct":  "contract",
	"paymnet":   "payment",
	"schedlued": "scheduled",
}

// trailingPunct may follow an abbreviation without blocking expansion
const trailingPunct = ",.;:?!"

var typoOrder []string

func init() {
	for k := range typos {
		typoOrder = append(typoOrder, k)
	}
	sort.Slice(typoOrder, func(i, j int) bool {
		if len(typoOrder[i]) != len(typoOrder[j]) {
			return len(typoOrder[i]) > len(typoOrder[j])
		}
		return typoOrder[i] < typoOrder[j]
	})
}

// Normalize applies the lexical rules in order: Unicode folding, trim and
// lower-case, abbreviation expansion, typo correction, whitespace collapse.
func Normalize(input string) string {
	s := norm.NFKC.String(input)
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	for i, w := range words {
		core := strings.TrimRight(w, trailingPunct)
		if full, ok := abbreviations[core]; ok {
			words[i] = full + w[len(core):]
		}
	}
	s = strings.Join(words, " ")

	for _, typo := range typoOrder {
		if strings.Contains(s, typo) {
			s = strings.ReplaceAll(s, typo, typos[typo])
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// Abbreviation returns the expansion of a whole-word abbreviation.
func Abbreviation(word string) (string, bool) {
	full, ok := abbreviations[strings.ToLower(word)]
	return full, ok
}
