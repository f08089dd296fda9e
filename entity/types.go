// Package entity defines the closed set of domain entity types the palette
// understands, their static descriptors, stored records, and the per-call
// resolution context.
package entity

import (
	"sort"
	"strings"
)

// Type is a domain object category. The set is closed: every value has a
// descriptor in the table below.
type Type string

const (
	Ticket   Type = "ticket"
	Client   Type = "client"
	Invoice  Type = "invoice"
	Quote    Type = "quote"
	Project  Type = "project"
	Asset    Type = "asset"
	User     Type = "user"
	Contact  Type = "contact"
	Contract Type = "contract"
	Expense  Type = "expense"
	Payment  Type = "payment"
	Product  Type = "product"
	Article  Type = "article"
	Location Type = "location"
	Vendor   Type = "vendor"
)

// Searchable text columns shared by every entity type
const (
	FieldCode        = "code"
	FieldName        = "name"
	FieldTitle       = "title"
	FieldEmail       = "email"
	FieldDescription = "description"
)

// Descriptor is the static description of one entity type.
type Descriptor struct {
	Type     Type
	Model    string   // domain model name
	Plural   string   // display form for list-style commands
	Synonyms []string // words (and shortcut symbols) that refer to the type
	Fields   []string // searchable columns for fuzzy resolution
	Priority float64  // global search weight
}

// order is the declaration order used for extraction and global search fan-out.
var order = []Type{
	Ticket, Client, Invoice, Quote, Project, Asset, User, Contact,
	Contract, Expense, Payment, Product, Article, Location, Vendor,
}

var descriptors = map[Type]Descriptor{
	Ticket: {
		Model: "Ticket", Plural: "tickets",
		Synonyms: []string{"#", "ticket", "tickets", "issue", "issues", "support request", "case", "cases", "incident"},
		Fields:   []string{FieldTitle, FieldCode, FieldDescription},
		Priority: 1.1,
	},
	Client: {
		Model: "Client", Plural: "clients",
		Synonyms: []string{"@", "client", "clients", "customer", "customers", "company", "companies", "account"},
		Fields:   []string{FieldName, FieldCode, FieldEmail},
		Priority: 1.2,
	},
	Invoice: {
		Model: "Invoice", Plural: "invoices",
		Synonyms: []string{"$", "invoice", "invoices", "bill", "bills", "billing"},
		Fields:   []string{FieldCode, FieldTitle},
		Priority: 1.0,
	},
	Quote: {
		Model: "Quote", Plural: "quotes",
		Synonyms: []string{"quote", "quotes", "quotation", "estimate", "estimates", "proposal"},
		Fields:   []string{FieldCode, FieldTitle},
		Priority: 1.0,
	},
	Project: {
		Model: "Project", Plural: "projects",
		Synonyms: []string{"project", "projects", "milestone"},
		Fields:   []string{FieldName, FieldCode, FieldDescription},
		Priority: 0.9,
	},
	Asset: {
		Model: "Asset", Plural: "assets",
		Synonyms: []string{"asset", "assets", "device", "devices", "computer", "laptop", "server", "hardware", "equipment"},
		Fields:   []string{FieldName, FieldCode, FieldDescription},
		Priority: 0.8,
	},
	User: {
		Model: "User", Plural: "users",
		Synonyms: []string{"user", "users", "technician", "technicians", "staff", "employee", "employees"},
		Fields:   []string{FieldName, FieldEmail},
		Priority: 0.7,
	},
	Contact: {
		Model: "Contact", Plural: "contacts",
		Synonyms: []string{"contact", "contacts", "person", "people"},
		Fields:   []string{FieldName, FieldEmail},
		Priority: 1.0,
	},
	Contract: {
		Model: "Contract", Plural: "contracts",
		Synonyms: []string{"contract", "contracts", "agreement", "agreements"},
		Fields:   []string{FieldName, FieldCode},
		Priority: 1.0,
	},
	Expense: {
		Model: "Expense", Plural: "expenses",
		Synonyms: []string{"expense", "expenses", "reimbursement"},
		Fields:   []string{FieldTitle, FieldDescription},
		Priority: 1.0,
	},
	Payment: {
		Model: "Payment", Plural: "payments",
		Synonyms: []string{"payment", "payments", "receipt", "receipts"},
		Fields:   []string{FieldCode, FieldTitle},
		Priority: 1.0,
	},
	Product: {
		Model: "Product", Plural: "products",
		Synonyms: []string{"product", "products", "sku", "catalog"},
		Fields:   []string{FieldName, FieldCode},
		Priority: 1.0,
	},
	Article: {
		Model: "KnowledgeArticle", Plural: "articles",
		Synonyms: []string{"article", "articles", "knowledge base", "documentation", "how-to"},
		Fields:   []string{FieldTitle, FieldDescription},
		Priority: 1.0,
	},
	Location: {
		Model: "Location", Plural: "locations",
		Synonyms: []string{"location", "locations", "site", "sites", "office", "branch"},
		Fields:   []string{FieldName, FieldDescription},
		Priority: 1.0,
	},
	Vendor: {
		Model: "Vendor", Plural: "vendors",
		Synonyms: []string{"vendor", "vendors", "supplier", "suppliers", "distributor"},
		Fields:   []string{FieldName, FieldEmail},
		Priority: 1.0,
	},
}

// symbols maps shortcut prefixes to the entity they address
var symbols = map[byte]Type{
	'#': Ticket,
	'@': Client,
	'$': Invoice,
}

func init() {
	for t, d := range descriptors {
		d.Type = t
		descriptors[t] = d
	}
}

// All returns every entity type in declaration order.
func All() []Type {
	out := make([]Type, len(order))
	copy(out, order)
	return out
}

// Describe returns the descriptor for t.
func Describe(t Type) (Descriptor, bool) {
	d, ok := descriptors[t]
	if !ok {
		return Descriptor{}, false
	}
	d.Synonyms = append([]string(nil), d.Synonyms...)
	d.Fields = append([]string(nil), d.Fields...)
	return d, true
}

// ParseType maps a tag (case-insensitive, singular or plural) to a Type.
func ParseType(tag string) (Type, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", false
	}
	if _, ok := descriptors[Type(tag)]; ok {
		return Type(tag), true
	}
	for _, t := range order {
		if descriptors[t].Plural == tag {
			return t, true
		}
	}
	return "", false
}

// ForSymbol returns the entity type addressed by a shortcut prefix.
func ForSymbol(symbol byte) (Type, bool) {
	t, ok := symbols[symbol]
	return t, ok
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	_, ok := descriptors[t]
	return ok
}

// Plural returns the display plural of t, falling back to t + "s".
func (t Type) Plural() string {
	if d, ok := descriptors[t]; ok {
		return d.Plural
	}
	return string(t) + "s"
}

// Priority returns the global search weight of t (1.0 for unknown types).
func (t Type) Priority() float64 {
	if d, ok := descriptors[t]; ok && d.Priority > 0 {
		return d.Priority
	}
	return 1.0
}

// Fields returns the searchable columns of t.
func (t Type) Fields() []string {
	return append([]string(nil), descriptors[t].Fields...)
}

// Synonyms returns the words (excluding single-character shortcut symbols)
// that refer to t.
func (t Type) Synonyms() []string {
	var out []string
	for _, s := range descriptors[t].Synonyms {
		if len(s) > 1 {
			out = append(out, s)
		}
	}
	return out
}

// SortTypes returns a sorted copy of types with duplicates removed.
func SortTypes(types []Type) []Type {
	seen := make(map[Type]bool, len(types))
	out := make([]Type, 0, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
