// Package intent turns free-text palette input into a structured Command:
// an intent, the entity types it mentions, its modifiers, an optional
// reference to a concrete record, and an advisory confidence score.
package intent

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/internal/util"
)

// Intent is the top-level action a command expresses.
type Intent string

const (
	Create Intent = "CREATE"
	Show   Intent = "SHOW"
	Go     Intent = "GO"
	Find   Intent = "FIND"
	Action Intent = "ACTION"
)

// Intents lists every intent in classification order.
func Intents() []Intent {
	return []Intent{Create, Show, Go, Find, Action}
}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case Create, Show, Go, Find, Action:
		return true
	}
	return false
}

// Modifier is an orthogonal qualifier on a command.
type Modifier string

const (
	Urgent    Modifier = "URGENT"
	Overdue   Modifier = "OVERDUE"
	Scheduled Modifier = "SCHEDULED"
	Mine      Modifier = "MY"
	ForClient Modifier = "FOR_CLIENT"
)

// Valid reports whether m is a known modifier.
func (m Modifier) Valid() bool {
	switch m {
	case Urgent, Overdue, Scheduled, Mine, ForClient:
		return true
	}
	return false
}

// ReferenceKind says how a reference value should be looked up.
type ReferenceKind string

const (
	ReferenceID   ReferenceKind = "id"
	ReferenceCode ReferenceKind = "code"
	ReferenceName ReferenceKind = "name"
)

// Reference points at one concrete record. Type is empty when the input
// named no entity type.
type Reference struct {
	Type  entity.Type   `json:"type,omitempty"`
	Kind  ReferenceKind `json:"kind"`
	Value string        `json:"value"`
}

// Command is a parsed palette input. It is immutable: accessors return copies.
type Command struct {
	original    string
	normalized  string
	intent      Intent
	entities    []entity.Type
	modifiers   []Modifier
	reference   *Reference
	searchQuery string
	context     map[string]string
	confidence  float64
	shortcut    bool
}

// CommandSpec holds the fields of a Command under construction.
type CommandSpec struct {
	Original    string
	Normalized  string
	Intent      Intent
	Entities    []entity.Type
	Modifiers   []Modifier
	Reference   *Reference
	SearchQuery string
	Context     map[string]string
	Confidence  float64
	Shortcut    bool
}

// Build freezes spec into a Command. Entities and modifiers are de-duplicated
// and sorted, an empty intent becomes FIND and confidence is clamped to [0,1].
func Build(spec CommandSpec) *Command {
	c := &Command{
		original:    spec.Original,
		normalized:  spec.Normalized,
		intent:      spec.Intent,
		entities:    entity.SortTypes(spec.Entities),
		modifiers:   sortModifiers(spec.Modifiers),
		searchQuery: spec.SearchQuery,
		confidence:  util.Clamp01(spec.Confidence),
		shortcut:    spec.Shortcut,
	}
	if c.intent == "" {
		c.intent = Find
	}
	if spec.Reference != nil {
		ref := *spec.Reference
		c.reference = &ref
	}
	if len(spec.Context) > 0 {
		c.context = make(map[string]string, len(spec.Context))
		for k, v := range spec.Context {
			c.context[k] = v
		}
	}
	return c
}

func (c *Command) Original() string    { return c.original }
func (c *Command) Normalized() string  { return c.normalized }
func (c *Command) Intent() Intent      { return c.intent }
func (c *Command) SearchQuery() string { return c.searchQuery }
func (c *Command) Confidence() float64 { return c.confidence }
func (c *Command) IsShortcut() bool    { return c.shortcut }

// Entities returns the mentioned entity types, sorted.
func (c *Command) Entities() []entity.Type {
	return append([]entity.Type(nil), c.entities...)
}

// Modifiers returns the detected modifiers, sorted.
func (c *Command) Modifiers() []Modifier {
	return append([]Modifier(nil), c.modifiers...)
}

// HasEntity reports whether t was mentioned.
func (c *Command) HasEntity(t entity.Type) bool {
	for _, e := range c.entities {
		if e == t {
			return true
		}
	}
	return false
}

// HasModifier reports whether m was detected.
func (c *Command) HasModifier(m Modifier) bool {
	for _, x := range c.modifiers {
		if x == m {
			return true
		}
	}
	return false
}

// Reference returns a copy of the entity reference, or nil.
func (c *Command) Reference() *Reference {
	if c.reference == nil {
		return nil
	}
	ref := *c.reference
	return &ref
}

// Context returns a copy of the context map the command was parsed with.
func (c *Command) Context() map[string]string {
	out := make(map[string]string, len(c.context))
	for k, v := range c.context {
		out[k] = v
	}
	return out
}

// PrimaryEntity returns the entity type a reference should resolve against:
// the reference type when set, else the single mentioned type.
func (c *Command) PrimaryEntity() (entity.Type, bool) {
	if c.reference != nil && c.reference.Type != "" {
		return c.reference.Type, true
	}
	if len(c.entities) == 1 {
		return c.entities[0], true
	}
	return "", false
}

// PatternKey is the usage signature of the command:
// intent:sortedEntities:sortedModifiers.
func (c *Command) PatternKey() string {
	return PatternKey(c.intent, c.entities, c.modifiers)
}

// PatternKey builds a usage signature from its parts.
func PatternKey(in Intent, entities []entity.Type, modifiers []Modifier) string {
	ents := entity.SortTypes(entities)
	mods := sortModifiers(modifiers)

	es := make([]string, len(ents))
	for i, e := range ents {
		es[i] = string(e)
	}
	ms := make([]string, len(mods))
	for i, m := range mods {
		ms[i] = string(m)
	}
	return string(in) + ":" + strings.Join(es, ",") + ":" + strings.Join(ms, ",")
}

// ParsePatternKey splits a usage signature back into its parts.
func ParsePatternKey(key string) (Intent, []entity.Type, []Modifier, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return "", nil, nil, errors.NewInvalidRequestError("malformed pattern key %q", key)
	}
	in := Intent(parts[0])
	if !in.Valid() {
		return "", nil, nil, errors.NewInvalidRequestError("unknown intent %q in pattern key", parts[0])
	}

	var ents []entity.Type
	for _, s := range splitList(parts[1]) {
		t := entity.Type(s)
		if !t.Valid() {
			return "", nil, nil, errors.NewInvalidRequestError("unknown entity type %q in pattern key", s)
		}
		ents = append(ents, t)
	}
	var mods []Modifier
	for _, s := range splitList(parts[2]) {
		m := Modifier(s)
		if !m.Valid() {
			return "", nil, nil, errors.NewInvalidRequestError("unknown modifier %q in pattern key", s)
		}
		mods = append(mods, m)
	}
	return in, ents, mods, nil
}

type commandJSON struct {
	Original    string            `json:"original"`
	Normalized  string            `json:"normalized"`
	Intent      Intent            `json:"intent"`
	Entities    []entity.Type     `json:"entities"`
	Modifiers   []Modifier        `json:"modifiers"`
	Reference   *Reference        `json:"entity_reference,omitempty"`
	SearchQuery string            `json:"search_query,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Confidence  float64           `json:"confidence"`
	Shortcut    bool              `json:"is_shortcut"`
}

// MarshalJSON renders the command for logs and the CLI.
func (c *Command) MarshalJSON() ([]byte, error) {
	ents := c.Entities()
	if ents == nil {
		ents = []entity.Type{}
	}
	mods := c.Modifiers()
	if mods == nil {
		mods = []Modifier{}
	}
	return json.Marshal(commandJSON{
		Original:    c.original,
		Normalized:  c.normalized,
		Intent:      c.intent,
		Entities:    ents,
		Modifiers:   mods,
		Reference:   c.reference,
		SearchQuery: c.searchQuery,
		Context:     c.context,
		Confidence:  c.confidence,
		Shortcut:    c.shortcut,
	})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func sortModifiers(mods []Modifier) []Modifier {
	seen := make(map[Modifier]bool, len(mods))
	out := make([]Modifier, 0, len(mods))
	for _, m := range mods {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
