package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorTableIsExhaustive(t *testing.T) {
	require.Len(t, All(), 15)
	for _, typ := range All() {
		d, ok := Describe(typ)
		require.True(t, ok, "missing descriptor for %s", typ)
		assert.Equal(t, typ, d.Type)
		assert.NotEmpty(t, d.Model)
		assert.NotEmpty(t, d.Fields)
		assert.NotEmpty(t, typ.Synonyms())
		for _, f := range d.Fields {
			assert.True(t, IsSearchableField(f), "%s declares unknown field %s", typ, f)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		tag  string
		want Type
		ok   bool
	}{
		{"ticket", Ticket, true},
		{"Tickets", Ticket, true},
		{" INVOICE ", Invoice, true},
		{"vendors", Vendor, true},
		{"spaceship", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.tag)
		assert.Equal(t, tt.ok, ok, tt.tag)
		assert.Equal(t, tt.want, got, tt.tag)
	}
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1.2, Client.Priority())
	assert.Equal(t, 1.1, Ticket.Priority())
	assert.Equal(t, 1.0, Invoice.Priority())
	assert.Equal(t, 0.9, Project.Priority())
	assert.Equal(t, 0.8, Asset.Priority())
	assert.Equal(t, 0.7, User.Priority())
	assert.Equal(t, 1.0, Type("unknown").Priority())
}

func TestSymbolsAndSynonyms(t *testing.T) {
	typ, ok := ForSymbol('#')
	require.True(t, ok)
	assert.Equal(t, Ticket, typ)
	typ, _ = ForSymbol('@')
	assert.Equal(t, Client, typ)
	typ, _ = ForSymbol('$')
	assert.Equal(t, Invoice, typ)

	_, ok = ForSymbol('%')
	assert.False(t, ok)

	assert.NotContains(t, Ticket.Synonyms(), "#")
	assert.Contains(t, Ticket.Synonyms(), "ticket")
}

func TestDescribeReturnsCopies(t *testing.T) {
	d, _ := Describe(Ticket)
	d.Synonyms[0] = "mutated"
	again, _ := Describe(Ticket)
	assert.Equal(t, "#", again.Synonyms[0])
}

func TestEntityHelpers(t *testing.T) {
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	e := Entity{ID: 7, Type: Client, Name: "Acme Corporation", Email: "ops@acme.test", CreatedAt: created}

	assert.Equal(t, "Acme Corporation", e.Field(FieldName))
	assert.Equal(t, "", e.Field("status"))
	assert.Equal(t, "Acme Corporation", e.Label())
	assert.Equal(t, int64(7), e.ClientKey())
	assert.Equal(t, created, e.Touched())

	ticket := Entity{ID: 9, Type: Ticket, ClientID: 7, Code: "T-9"}
	assert.Equal(t, int64(7), ticket.ClientKey())
	assert.Equal(t, "T-9", ticket.Label())
}

func TestContextKeys(t *testing.T) {
	c := Context{TenantID: 1, UserID: 2, SelectedClientID: 3, Workflow: "Billing"}

	assert.Equal(t, "t1.u2.c3.wbilling", c.Key())
	assert.Equal(t, "billing@3", c.LearningKey())
	assert.Equal(t, map[string]string{
		"tenant_id": "1", "user_id": "2", "client_id": "3", "workflow": "Billing",
	}, c.Map())

	empty := Context{}
	assert.False(t, empty.HasTenant())
	assert.False(t, empty.HasUser())
	assert.Equal(t, "general@0", empty.LearningKey())
	assert.Empty(t, empty.Map())
}
