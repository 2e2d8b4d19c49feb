package census

import (
	"fmt"
	"strconv"
	"strings"
)

// Verb selects the operation performed by a query.
type Verb string

const (
	// VerbGet returns the list of matching results.
	VerbGet Verb = "get"
	// VerbCount returns the number of potential matches instead.
	VerbCount Verb = "count"
)

// DefaultEndpoint is the official Census API endpoint.
const DefaultEndpoint = "https://census.daybreakgames.com"

// URL generates the wire string representing this query, recursively
// serialising any joined queries.
//
// Serialisation is deterministic: terms are emitted in insertion
// order, followed by query commands in a fixed order, so the same
// fully built query always yields an identical string.
func (q *Query) URL(verb Verb) (string, error) {
	var sb strings.Builder
	endpoint := DefaultEndpoint
	if q.endpoint != nil {
		endpoint = strings.TrimRight(q.endpoint.String(), "/")
	}
	sb.WriteString(endpoint)
	// The service ID segment only exists on the official endpoint;
	// community endpoints embed their own authentication.
	if q.endpoint == nil {
		sb.WriteByte('/')
		sb.WriteString(q.serviceID)
	}
	sb.WriteByte('/')
	sb.WriteString(string(verb))
	sb.WriteByte('/')
	sb.WriteString(q.namespace)
	if q.collection != "" {
		sb.WriteByte('/')
		sb.WriteString(q.collection)
	}

	pairs := make([][2]string, 0, len(q.terms))
	for _, t := range q.terms {
		key, value, err := t.AsTuple()
		if err != nil {
			return "", err
		}
		pairs = append(pairs, [2]string{key, value})
	}
	commands, err := queryCommands(q)
	if err != nil {
		return "", err
	}
	pairs = append(pairs, commands...)

	for i, p := range pairs {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(escapeComponent(p[0]))
		sb.WriteByte('=')
		sb.WriteString(escapeComponent(p[1]))
	}
	return sb.String(), nil
}

// String returns the query's wire string for the "get" verb. Invalid
// queries render as an error description instead; use URL for
// explicit error handling.
func (q *Query) String() string {
	s, err := q.URL(VerbGet)
	if err != nil {
		return "<invalid query: " + err.Error() + ">"
	}
	return s
}

// queryCommands renders the query commands in their fixed wire order:
// show/hide, sort, has, resolve, case, limit/limitPerDB, start,
// includeNull, lang, join, tree, timing, exactMatchFirst, distinct,
// retry. Commands left at their default are omitted entirely.
func queryCommands(q *Query) ([][2]string, error) {
	var commands [][2]string
	add := func(key, value string) {
		commands = append(commands, [2]string{"c:" + key, value})
	}
	switch sel := q.selection.(type) {
	case ShowFields:
		if len(sel) > 0 {
			add("show", strings.Join(sel, ","))
		}
	case HideFields:
		if len(sel) > 0 {
			add("hide", strings.Join(sel, ","))
		}
	}
	if len(q.sortKeys) > 0 {
		parts := make([]string, len(q.sortKeys))
		for i, k := range q.sortKeys {
			parts[i] = k.serialise()
		}
		add("sort", strings.Join(parts, ","))
	}
	if len(q.has) > 0 {
		add("has", strings.Join(q.has, ","))
	}
	if len(q.resolve) > 0 {
		add("resolve", strings.Join(q.resolve, ","))
	}
	if !q.caseSensitive {
		add("case", "0")
	}
	if q.limit.count > 1 {
		if q.limit.perDB {
			add("limitPerDB", strconv.Itoa(q.limit.count))
		} else {
			add("limit", strconv.Itoa(q.limit.count))
		}
	}
	if q.start > 0 {
		add("start", strconv.Itoa(q.start))
	}
	if q.includeNull {
		add("includeNull", "1")
	}
	if q.lang != "" {
		add("lang", q.lang)
	}
	if len(q.joins) > 0 {
		parts := make([]string, len(q.joins))
		for i, j := range q.joins {
			s, err := SerialiseJoin(j, false)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		add("join", strings.Join(parts, ","))
	}
	if q.tree != nil {
		add("tree", serialiseTree(*q.tree))
	}
	if q.timing {
		add("timing", "1")
	}
	if q.exactMatchFirst {
		add("exactMatchFirst", "1")
	}
	if q.distinct != "" {
		add("distinct", q.distinct)
	}
	if !q.retry {
		add("retry", "0")
	}
	return commands, nil
}

// SerialiseJoin returns the wire representation of a joined query,
// recursively processing any inner joins.
//
// Fields left at their default are omitted to save space; a join with
// no non-default fields still emits its collection name. Set verbose
// to always write every value, which is primarily a troubleshooting
// option.
//
// Note the double-separator scheme: lists inside a join are joined
// with a single quote, while sibling joins use a comma. Mixing the
// two breaks the server-side parser in non-obvious ways.
func SerialiseJoin(j *JoinedQuery, verbose bool) (string, error) {
	var sb strings.Builder
	if verbose {
		// The docs sometimes refer to the joined collection as "type".
		sb.WriteString("type:")
	}
	sb.WriteString(j.collection)
	if j.fieldOn != "" {
		sb.WriteString("^on:")
		sb.WriteString(j.fieldOn)
	}
	if j.fieldTo != "" {
		sb.WriteString("^to:")
		sb.WriteString(j.fieldTo)
	}
	if j.isList || verbose {
		sb.WriteString("^list:")
		sb.WriteString(flag(j.isList))
	}
	if !j.isOuter || verbose {
		sb.WriteString("^outer:")
		sb.WriteString(flag(j.isOuter))
	}
	switch sel := j.selection.(type) {
	case ShowFields:
		if len(sel) > 0 {
			sb.WriteString("^show:")
			sb.WriteString(strings.Join(sel, "'"))
		}
	case HideFields:
		if len(sel) > 0 {
			sb.WriteString("^hide:")
			sb.WriteString(strings.Join(sel, "'"))
		}
	}
	if j.injectAt != "" {
		sb.WriteString("^inject_at:")
		sb.WriteString(j.injectAt)
	}
	if len(j.terms) > 0 {
		parts := make([]string, len(j.terms))
		for i, t := range j.terms {
			s, err := t.Serialise()
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		sb.WriteString("^terms:")
		sb.WriteString(strings.Join(parts, "'"))
	}
	if len(j.joins) > 0 {
		parts := make([]string, len(j.joins))
		for i, inner := range j.joins {
			s, err := SerialiseJoin(inner, verbose)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		sb.WriteByte('(')
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteByte(')')
	}
	return sb.String(), nil
}

// serialiseTree renders the c:tree command value.
func serialiseTree(t TreeOptions) string {
	var sb strings.Builder
	sb.WriteString(t.Field)
	if t.Prefix != "" {
		sb.WriteString("^prefix:")
		sb.WriteString(t.Prefix)
	}
	if t.IsList {
		sb.WriteString("^list:1")
	}
	if t.Start != "" {
		sb.WriteString("^start:")
		sb.WriteString(t.Start)
	}
	return sb.String()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ValidationResult contains the diagnostics produced by Validate.
type ValidationResult struct {
	// OK indicates that the query raised no warnings.
	OK bool

	// Warnings lists likely caller mistakes. The query still
	// serialises; none of these are hard failures.
	Warnings []string
}

// Validate checks a query for shapes that serialise fine but are
// likely meaningless to the service, such as filter terms without a
// collection to filter. Validate is a pure function with no side
// effects; serialisation never consults it.
func Validate(q *Query) ValidationResult {
	var warnings []string
	if q.collection == "" {
		if n := len(q.terms); n > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"no collection specified, but %d query terms provided", n))
		} else if n := len(q.joins); n > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"no collection specified, but %d joined queries provided", n))
		}
	}
	if q.endpoint == nil && q.serviceID == DefaultServiceID {
		warnings = append(warnings,
			"the default service ID is heavily rate-limited; consider "+
				"applying for your own at https://census.daybreakgames.com/#devSignup")
	}
	return ValidationResult{OK: len(warnings) == 0, Warnings: warnings}
}

// escapeComponent percent-encodes a query string component. The
// characters of the join and modifier grammar (carets, quotes,
// parentheses, brackets, commas and friends) pass through verbatim;
// the service expects them unescaped. Everything else outside the
// unreserved set is encoded.
func escapeComponent(s string) string {
	needs := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			needs++
		}
	}
	if needs == 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2*needs)
	const upperhex = "0123456789ABCDEF"
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&0xf])
		} else {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func shouldEscape(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '.', '_', '~', // unreserved
		':', ',', '\'', '(', ')', '^', '!', '*', '<', '>', '[', ']':
		return false
	}
	return true
}
