package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
)

func TestBuildFreezesInput(t *testing.T) {
	ents := []entity.Type{entity.Ticket, entity.Client, entity.Ticket}
	ref := &Reference{Type: entity.Ticket, Kind: ReferenceID, Value: "1"}
	ctx := map[string]string{"tenant_id": "1"}

	cmd := Build(CommandSpec{Entities: ents, Reference: ref, Context: ctx, Confidence: 1.7})

	ents[0] = entity.Vendor
	ref.Value = "2"
	ctx["tenant_id"] = "9"

	assert.Equal(t, Find, cmd.Intent(), "empty intent defaults to FIND")
	assert.Equal(t, []entity.Type{entity.Client, entity.Ticket}, cmd.Entities())
	assert.Equal(t, "1", cmd.Reference().Value)
	assert.Equal(t, "1", cmd.Context()["tenant_id"])
	assert.Equal(t, 1.0, cmd.Confidence())

	cmd.Entities()[0] = entity.Vendor
	cmd.Reference().Value = "3"
	cmd.Context()["tenant_id"] = "7"
	assert.Equal(t, []entity.Type{entity.Client, entity.Ticket}, cmd.Entities())
	assert.Equal(t, "1", cmd.Reference().Value)
	assert.Equal(t, "1", cmd.Context()["tenant_id"])
}

func TestPrimaryEntity(t *testing.T) {
	cmd := Build(CommandSpec{Entities: []entity.Type{entity.Invoice}})
	typ, ok := cmd.PrimaryEntity()
	assert.True(t, ok)
	assert.Equal(t, entity.Invoice, typ)

	cmd = Build(CommandSpec{
		Entities:  []entity.Type{entity.Client, entity.Ticket},
		Reference: &Reference{Type: entity.Quote, Kind: ReferenceCode, Value: "QUOTE-1"},
	})
	typ, ok = cmd.PrimaryEntity()
	assert.True(t, ok)
	assert.Equal(t, entity.Quote, typ)

	_, ok = Build(CommandSpec{Entities: []entity.Type{entity.Client, entity.Ticket}}).PrimaryEntity()
	assert.False(t, ok)
}

func TestPatternKeyRoundTrip(t *testing.T) {
	key := PatternKey(Show, []entity.Type{entity.Ticket, entity.Client}, []Modifier{Urgent, Mine})
	assert.Equal(t, "SHOW:client,ticket:MY,URGENT", key)

	in, ents, mods, err := ParsePatternKey(key)
	require.NoError(t, err)
	assert.Equal(t, Show, in)
	assert.Equal(t, []entity.Type{entity.Client, entity.Ticket}, ents)
	assert.Equal(t, []Modifier{Mine, Urgent}, mods)

	in, ents, mods, err = ParsePatternKey("CREATE::")
	require.NoError(t, err)
	assert.Equal(t, Create, in)
	assert.Empty(t, ents)
	assert.Empty(t, mods)
}

func TestParsePatternKeyRejectsGarbage(t *testing.T) {
	for _, key := range []string{"", "SHOW", "DANCE::", "SHOW:spaceship:", "SHOW:ticket:LOUD"} {
		_, _, _, err := ParsePatternKey(key)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), key)
	}
}
