package census

import (
	"net/url"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, q *Query, verb Verb) string {
	t.Helper()
	s, err := q.URL(verb)
	require.NoError(t, err)
	return s
}

func TestURLBare(t *testing.T) {
	q := NewQuery("character")
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/character",
		mustURL(t, q, VerbGet))
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/count/ps2:v2/character",
		mustURL(t, q, VerbCount))
}

func TestURLNoCollection(t *testing.T) {
	q := NewQuery("")
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2",
		mustURL(t, q, VerbGet))
}

func TestURLSingleTerm(t *testing.T) {
	q := NewQuery("character").
		AddTerm("name.first_lower", Str("auroram"), EqualTo)
	// The default limit of one is never written out.
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/character"+
			"?name.first_lower=auroram",
		mustURL(t, q, VerbGet))
}

func TestURLTermInsertionOrder(t *testing.T) {
	q := NewQuery("item").
		AddTerm("faction_id", Int(1), EqualTo).
		AddTerm("item_category_id", Int(3), NotEqual).
		AddTerm("name.en", Str("Pulsar"), Contains)
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/item"+
			"?faction_id=1&item_category_id=!3&name.en=*Pulsar",
		mustURL(t, q, VerbGet))
}

func TestURLSortKeys(t *testing.T) {
	q := NewQuery("item").SortBy(
		SortKey{Field: "faction_id"},
		SortKey{Field: "item_id", Descending: true},
	)
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/item"+
			"?c:sort=faction_id,item_id:-1",
		mustURL(t, q, VerbGet))
}

func TestURLCaseInsensitive(t *testing.T) {
	q := NewQuery("item", Terms{"name__en": Str("*Pulsar")}).SetCase(false)
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/item"+
			"?name.en=*Pulsar&c:case=0",
		mustURL(t, q, VerbGet))
}

func TestURLCommandOrder(t *testing.T) {
	q := NewQuery("character")
	q.Show("name", "faction_id")
	q.SortFields("name.first")
	q.Has("prestige_level")
	q.Resolve("online_status")
	q.SetCase(false)
	require.NoError(t, q.SetLimit(20))
	require.NoError(t, q.SetStart(40))
	q.SetIncludeNull(true)
	require.NoError(t, q.SetLocale("en"))
	q.CreateJoin("characters_world")
	require.NoError(t, q.AsTree(TreeOptions{Field: "faction_id", IsList: true}))
	q.SetTiming(true)
	q.SetExactMatchFirst(true)
	q.SetDistinct("faction_id")
	q.SetRetry(false)

	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/character"+
			"?c:show=name,faction_id"+
			"&c:sort=name.first"+
			"&c:has=prestige_level"+
			"&c:resolve=online_status"+
			"&c:case=0"+
			"&c:limit=20"+
			"&c:start=40"+
			"&c:includeNull=1"+
			"&c:lang=en"+
			"&c:join=characters_world"+
			"&c:tree=faction_id^list:1"+
			"&c:timing=1"+
			"&c:exactMatchFirst=1"+
			"&c:distinct=faction_id"+
			"&c:retry=0",
		mustURL(t, q, VerbGet))
}

func TestURLLimitPerDB(t *testing.T) {
	q := NewQuery("character")
	require.NoError(t, q.SetLimitPerDB(25))
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/character"+
			"?c:limitPerDB=25",
		mustURL(t, q, VerbGet))
}

func TestURLCustomEndpoint(t *testing.T) {
	endpoint, err := url.Parse("https://census.lithafalcon.cc")
	require.NoError(t, err)

	// Custom endpoints carry no service ID segment.
	q := NewQuery("character").Endpoint(endpoint)
	assert.Equal(t,
		"https://census.lithafalcon.cc/get/ps2:v2/character",
		mustURL(t, q, VerbGet))
}

func TestURLEscaping(t *testing.T) {
	q := NewQuery("character").
		AddTerm("name.first", Str("Higby Two&Co"), EqualTo)
	assert.Equal(t,
		"https://census.daybreakgames.com/s:example/get/ps2:v2/character"+
			"?name.first=Higby%20Two%26Co",
		mustURL(t, q, VerbGet))
}

func TestURLDeterministic(t *testing.T) {
	build := func() *Query {
		q := NewQuery("character", Terms{
			"faction_id":        Int(1),
			"name__first_lower": Str("^aurora"),
		})
		q.Show("character_id", "name.first").SortFields("name.first")
		q.CreateJoin("characters_world").SetFields("character_id", "")
		return q
	}
	first := mustURL(t, build(), VerbGet)
	second := mustURL(t, build(), VerbGet)
	assert.Equal(t, first, second)
	// Repeated serialisation of the same query is stable too.
	q := build()
	assert.Equal(t, mustURL(t, q, VerbGet), mustURL(t, q, VerbGet))
}

func TestURLInvalidModifier(t *testing.T) {
	q := NewQuery("character").AddTerm("faction_id", Int(1), SearchModifier(42))
	_, err := q.URL(VerbGet)
	assert.ErrorIs(t, err, ErrInvalidModifier)
}

func TestSerialiseJoinMinimal(t *testing.T) {
	s, err := SerialiseJoin(NewJoin("characters_world"), false)
	require.NoError(t, err)
	assert.Equal(t, "characters_world", s)
}

func TestSerialiseJoinVerbose(t *testing.T) {
	s, err := SerialiseJoin(NewJoin("item"), true)
	require.NoError(t, err)
	assert.Equal(t, "type:item^list:0^outer:1", s)
}

func TestSerialiseJoinNested(t *testing.T) {
	j := NewJoin("characters_item").
		SetFields("character_id", "").
		SetList(true).
		Show("item_id")
	inner := j.CreateJoin("item")
	inner.SetFields("item_id", "").
		Hide("description").
		Where(Terms{"faction_id": Int(2)})

	s, err := SerialiseJoin(j, false)
	require.NoError(t, err)
	assert.Equal(t,
		"characters_item^on:character_id^to:character_id^list:1^show:item_id"+
			"(item^on:item_id^to:item_id^hide:description^terms:faction_id=2)",
		s)
}

func TestSerialiseJoinSiblings(t *testing.T) {
	j := NewJoin("character")
	j.CreateJoin("characters_world")
	j.CreateJoin("characters_online_status")

	s, err := SerialiseJoin(j, false)
	require.NoError(t, err)
	assert.Equal(t,
		"character(characters_world,characters_online_status)", s)
}

func TestSerialiseJoinListSeparator(t *testing.T) {
	// Lists inside a join use single quotes, never commas.
	j := NewJoin("item").Show("item_id", "name.en")
	s, err := SerialiseJoin(j, false)
	require.NoError(t, err)
	assert.Equal(t, "item^show:item_id'name.en", s)

	j = NewJoin("item").Where(Terms{
		"faction_id": Int(2),
		"item_id":    Str("<100"),
	})
	s, err = SerialiseJoin(j, false)
	require.NoError(t, err)
	assert.Equal(t, "item^terms:faction_id=2'item_id=<100", s)
}

func TestValidateWarnings(t *testing.T) {
	result := Validate(NewQuery("character").ServiceID("s:mine"))
	assert.True(t, result.OK)
	assert.Empty(t, result.Warnings)

	result = Validate(NewQuery("character"))
	assert.False(t, result.OK)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "service ID")

	result = Validate(NewQuery("", Terms{"faction_id": Int(1)}).ServiceID("s:mine"))
	assert.False(t, result.OK)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no collection")
}

func TestURLGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	q := NewQuery("character")
	q.AddTerm("battle_rank.value", Int(100), GreaterThanOrEqual)
	q.Where(Terms{"name__first_lower": Str("^aurora")})
	q.Show("character_id", "name.first")
	q.SortFields("name.first")
	require.NoError(t, q.SetLimit(50))
	q.CreateJoin("characters_world").
		SetFields("character_id", "").
		SetInjectAt("world")

	g.Assert(t, "character-query", []byte(mustURL(t, q, VerbGet)))

	j := NewJoin("characters_item").
		SetFields("character_id", "").
		SetList(true)
	j.CreateJoin("item").
		SetFields("item_id", "").
		Show("item_id", "name.en")
	s, err := SerialiseJoin(j, true)
	require.NoError(t, err)
	g.Assert(t, "verbose-join", []byte(s))
}
