package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonhard-s/auraxium-go/census"
)

func defaultOptions() *RootOptions {
	return &RootOptions{
		ServiceID: census.DefaultServiceID,
		Namespace: census.DefaultNamespace,
	}
}

func TestBuildQueryTerms(t *testing.T) {
	flags := &QueryFlags{Terms: []string{
		"name.first_lower=auroram",
		"battle_rank.value=>50",
	}}
	q, err := flags.Build(defaultOptions(), "character")
	require.NoError(t, err)

	terms := q.Terms()
	require.Len(t, terms, 2)
	assert.Equal(t, "name.first_lower", terms[0].Field)
	assert.Equal(t, census.EqualTo, terms[0].Modifier)
	assert.Equal(t, "battle_rank.value", terms[1].Field)
	assert.Equal(t, census.GreaterThan, terms[1].Modifier)
	assert.Equal(t, census.Str("50"), terms[1].Value)
}

func TestBuildQueryInvalidTerm(t *testing.T) {
	flags := &QueryFlags{Terms: []string{"no-equals-sign"}}
	_, err := flags.Build(defaultOptions(), "character")
	assert.Error(t, err)
}

func TestBuildQueryShowHideExclusive(t *testing.T) {
	flags := &QueryFlags{Show: []string{"name"}, Hide: []string{"times"}}
	_, err := flags.Build(defaultOptions(), "character")
	assert.Error(t, err)
}

func TestBuildQueryLimitExclusive(t *testing.T) {
	flags := &QueryFlags{Limit: 10, LimitPerDB: 5}
	_, err := flags.Build(defaultOptions(), "character")
	assert.Error(t, err)
}

func TestBuildQuerySortAndLimit(t *testing.T) {
	flags := &QueryFlags{
		Sort:  []string{"faction_id", "item_id:-1"},
		Limit: 30,
		Start: 60,
	}
	q, err := flags.Build(defaultOptions(), "item")
	require.NoError(t, err)

	wire, err := q.URL(census.VerbGet)
	require.NoError(t, err)
	assert.Contains(t, wire, "c:sort=faction_id,item_id:-1")
	assert.Contains(t, wire, "c:limit=30")
	assert.Contains(t, wire, "c:start=60")
}

func TestBuildQueryEndpoint(t *testing.T) {
	opts := defaultOptions()
	opts.Endpoint = "https://census.lithafalcon.cc"
	flags := &QueryFlags{}
	q, err := flags.Build(opts, "character")
	require.NoError(t, err)

	wire, err := q.URL(census.VerbGet)
	require.NoError(t, err)
	assert.Equal(t, "https://census.lithafalcon.cc/get/ps2:v2/character", wire)
}

func TestBuildQueryInvalidLocale(t *testing.T) {
	opts := defaultOptions()
	opts.Locale = "!!"
	_, err := (&QueryFlags{}).Build(opts, "item")
	assert.ErrorIs(t, err, census.ErrInvalidLocale)
}

func TestURLCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"url", "character",
		"--service-id", "s:mine",
		"--term", "name.first_lower=auroram",
	})

	require.NoError(t, cmd.Execute())
	assert.Equal(t,
		"https://census.daybreakgames.com/s:mine/get/ps2:v2/character"+
			"?name.first_lower=auroram\n",
		out.String())
}

func TestURLCommandCountVerb(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"url", "character", "--count", "--service-id", "s:mine",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "/s:mine/count/ps2:v2/character")
}
