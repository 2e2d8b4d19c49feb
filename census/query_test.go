package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryDefaults(t *testing.T) {
	q := NewQuery("character")

	assert.Equal(t, "character", q.Collection())
	assert.Empty(t, q.Terms())
	assert.Nil(t, q.Selection())
	assert.Empty(t, q.Joins())
	limit, perDB := q.Limit()
	assert.Equal(t, 1, limit)
	assert.False(t, perDB)
}

func TestShowHideExclusive(t *testing.T) {
	q := NewQuery("character")

	q.Show("name", "faction_id").Hide("head_id")
	assert.Equal(t, HideFields{"head_id"}, q.Selection())

	q.Show("name")
	assert.Equal(t, ShowFields{"name"}, q.Selection())
}

func TestLimitExclusive(t *testing.T) {
	q := NewQuery("character")

	require.NoError(t, q.SetLimit(20))
	require.NoError(t, q.SetLimitPerDB(5))
	limit, perDB := q.Limit()
	assert.Equal(t, 5, limit)
	assert.True(t, perDB)

	require.NoError(t, q.SetLimit(3))
	limit, perDB = q.Limit()
	assert.Equal(t, 3, limit)
	assert.False(t, perDB)
}

func TestSetLimitInvalid(t *testing.T) {
	q := NewQuery("character")
	assert.ErrorIs(t, q.SetLimit(0), ErrInvalidLimit)
	assert.ErrorIs(t, q.SetLimit(-10), ErrInvalidLimit)
	assert.ErrorIs(t, q.SetLimitPerDB(0), ErrInvalidLimit)

	// A failed call leaves the previous limit in place.
	require.NoError(t, q.SetLimit(30))
	assert.ErrorIs(t, q.SetLimit(0), ErrInvalidLimit)
	limit, _ := q.Limit()
	assert.Equal(t, 30, limit)
}

func TestSetStartNegative(t *testing.T) {
	q := NewQuery("character")
	assert.ErrorIs(t, q.SetStart(-1), ErrInvalidOffset)
	assert.NoError(t, q.SetStart(0))
	assert.NoError(t, q.SetStart(100))
}

func TestSetLocale(t *testing.T) {
	q := NewQuery("item")
	require.NoError(t, q.SetLocale("en"))
	require.NoError(t, q.SetLocale("de"))
	require.NoError(t, q.SetLocale("")) // clears the restriction
	assert.ErrorIs(t, q.SetLocale("!!"), ErrInvalidLocale)
}

func TestParseSortKey(t *testing.T) {
	cases := []struct {
		input    string
		expected SortKey
		wantErr  bool
	}{
		{"faction_id", SortKey{Field: "faction_id"}, false},
		{"faction_id:1", SortKey{Field: "faction_id"}, false},
		{"item_id:-1", SortKey{Field: "item_id", Descending: true}, false},
		{"", SortKey{}, true},
		{":-1", SortKey{}, true},
		{"item_id:2", SortKey{}, true},
		{"item_id:descending", SortKey{}, true},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			key, err := ParseSortKey(c.input)
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSortKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expected, key)
		})
	}
}

func TestFieldNameMangling(t *testing.T) {
	q := NewQuery("character", Terms{"name__first": Str("Higby")})

	require.Len(t, q.Terms(), 1)
	assert.Equal(t, "name.first", q.Terms()[0].Field)
}

func TestWhereDeterministicOrder(t *testing.T) {
	terms := Terms{
		"zone_id":    Int(2),
		"faction_id": Int(1),
		"name__en":   Str("Pulsar"),
	}
	q := NewQuery("item", terms)

	fields := make([]string, len(q.Terms()))
	for i, term := range q.Terms() {
		fields[i] = term.Field
	}
	assert.Equal(t, []string{"faction_id", "name.en", "zone_id"}, fields)
}

func TestAsTreeStartValidation(t *testing.T) {
	q := NewQuery("item")
	assert.NoError(t, q.AsTree(TreeOptions{Field: "faction_id", Start: "5"}))
	assert.NoError(t, q.AsTree(TreeOptions{Field: "faction_id"}))
	assert.ErrorIs(t, q.AsTree(TreeOptions{Field: "faction_id", Start: "abc"}),
		ErrInvalidTreeStart)
	assert.ErrorIs(t, q.AsTree(TreeOptions{Field: "faction_id", Start: "-1"}),
		ErrInvalidTreeStart)
}

func TestAddJoinMissingCollection(t *testing.T) {
	q := NewQuery("character")
	assert.ErrorIs(t, q.AddJoin(NewQuery("")), ErrMissingCollection)
	assert.Empty(t, q.Joins())
}

func TestCreateJoinReturnsInner(t *testing.T) {
	q := NewQuery("character")
	join := q.CreateJoin("characters_world")
	nested := join.CreateJoin("world")

	require.Len(t, q.Joins(), 1)
	assert.Same(t, join, q.Joins()[0])
	require.Len(t, join.Joins(), 1)
	assert.Same(t, nested, join.Joins()[0])
}

func TestJoinSetFields(t *testing.T) {
	j := NewJoin("characters_item").SetFields("character_id", "")
	assert.Equal(t, "character_id", j.FieldOn())
	assert.Equal(t, "character_id", j.FieldTo())

	j.SetFields("", "item_id")
	assert.Equal(t, "character_id", j.FieldOn())
	assert.Equal(t, "item_id", j.FieldTo())
}

func TestJoinInjectionKey(t *testing.T) {
	j := NewJoin("characters_world").SetFields("character_id", "")
	assert.Equal(t, "character_id_join_characters_world", j.InjectionKey())

	j.SetInjectAt("world")
	assert.Equal(t, "world", j.InjectionKey())

	j.SetInjectAt("")
	assert.Equal(t, "character_id_join_characters_world", j.InjectionKey())
}

func TestJoinDefaults(t *testing.T) {
	j := NewJoin("item")
	assert.False(t, j.IsList())
	assert.True(t, j.IsOuter())
	assert.Empty(t, j.InjectAt())
}
