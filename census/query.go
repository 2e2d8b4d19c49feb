package census

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Service defaults used when a query does not override them.
const (
	DefaultNamespace = "ps2:v2"
	DefaultServiceID = "s:example"
)

// FieldSelection is a sealed interface describing which fields of a
// result are returned. A nil selection returns all fields. ShowFields
// and HideFields are mutually exclusive by construction: a node holds
// exactly one selection at a time.
type FieldSelection interface {
	fieldSelection() // Sealed - only these types implement it
}

// ShowFields lists the only fields to include in the result.
type ShowFields []string

func (ShowFields) fieldSelection() {}

// HideFields lists fields to exclude from the result.
type HideFields []string

func (HideFields) fieldSelection() {}

// Terms maps field names to values for term construction. Keys may use
// a double underscore as a path separator; it is rewritten to a dot
// before the term is built ("name__first" becomes "name.first").
// Modifier literals in string values are parsed via InferTerm.
type Terms map[string]Value

// Node is the interface shared by Query and JoinedQuery. It is sealed;
// use it to pass either node kind to the copy constructors NewQueryFrom
// and NewJoinFrom.
type Node interface {
	base() *queryBase
}

// queryBase carries the state shared between top-level and joined
// queries: the target collection, the ordered term list, the field
// selection and any nested joins. Term order is wire-significant and
// preserved exactly.
type queryBase struct {
	collection string
	terms      []SearchTerm
	selection  FieldSelection
	joins      []*JoinedQuery
}

// normaliseFieldName rewrites the double-underscore path separator to
// a dot, allowing access to inner fields like "name.first" through
// plain identifiers.
func normaliseFieldName(field string) string {
	return strings.ReplaceAll(field, "__", ".")
}

// addTermsMap adds one inferred term per map entry. Keys are visited
// in sorted order so that constructing the same query twice yields the
// same term order.
func (b *queryBase) addTermsMap(terms Terms) {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.terms = append(b.terms, InferTerm(normaliseFieldName(k), terms[k]))
	}
}

// Collection returns the collection targeted by this node. An empty
// string lists the available collections in the namespace (top-level
// queries only).
func (b *queryBase) Collection() string { return b.collection }

// Terms returns the node's terms in insertion order.
func (b *queryBase) Terms() []SearchTerm { return b.terms }

// Selection returns the node's field selection, or nil when all
// fields are returned.
func (b *queryBase) Selection() FieldSelection { return b.selection }

// Joins returns the node's joined queries in insertion order.
func (b *queryBase) Joins() []*JoinedQuery { return b.joins }

// SortKey identifies a field to sort by and the sort direction.
type SortKey struct {
	Field      string
	Descending bool
}

// ParseSortKey parses a sort specifier of the form "field",
// "field:1" (ascending) or "field:-1" (descending). Malformed
// specifiers fail with ErrInvalidSortKey.
func ParseSortKey(s string) (SortKey, error) {
	field, dir, found := strings.Cut(s, ":")
	if field == "" {
		return SortKey{}, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
	if !found {
		return SortKey{Field: field}, nil
	}
	switch dir {
	case "1":
		return SortKey{Field: field}, nil
	case "-1":
		return SortKey{Field: field, Descending: true}, nil
	default:
		return SortKey{}, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// serialise renders the sort key in its wire form, with a ":-1"
// suffix for descending order.
func (k SortKey) serialise() string {
	if k.Descending {
		return k.Field + ":-1"
	}
	return k.Field
}

// TreeOptions describes the c:tree command reshaping a flat result
// list into a data tree.
type TreeOptions struct {
	// Field is removed from the results and used as the root of the
	// data structure.
	Field string
	// IsList marks the tree's leaf data as a list.
	IsList bool
	// Prefix is prepended to the field value for readability.
	Prefix string
	// Start tells the tree where to start. Empty reshapes the root
	// result list. When set, it must be a non-negative integer.
	Start string
}

// resultLimit holds the limit/limitPerDB pair as a single value, which
// keeps the two commands mutually exclusive by construction. The
// default of one result is never emitted on the wire.
type resultLimit struct {
	perDB bool
	count int
}

// Query is the top-level query supplied to the API.
//
// The top-level query has access to additional return value formats
// such as sorting or tree views, and supports global flags that
// propagate through to any inner, joined queries.
type Query struct {
	queryBase

	namespace string
	serviceID string
	endpoint  *url.URL // nil selects the official endpoint

	caseSensitive   bool
	distinct        string
	exactMatchFirst bool
	has             []string
	includeNull     bool
	lang            string
	limit           resultLimit
	resolve         []string
	retry           bool
	sortKeys        []SortKey
	start           int
	timing          bool
	tree            *TreeOptions
}

// NewQuery creates a new top-level query for the given collection.
// Pass an empty collection to list the collections available in the
// namespace. Any Terms maps are converted to inferred search terms.
func NewQuery(collection string, terms ...Terms) *Query {
	q := &Query{
		queryBase:     queryBase{collection: collection},
		namespace:     DefaultNamespace,
		serviceID:     DefaultServiceID,
		caseSensitive: true,
		limit:         resultLimit{count: 1},
		retry:         true,
	}
	for _, t := range terms {
		q.addTermsMap(t)
	}
	return q
}

func (q *Query) base() *queryBase { return &q.queryBase }

// Namespace sets the game namespace to access.
func (q *Query) Namespace(namespace string) *Query {
	q.namespace = namespace
	return q
}

// ServiceID sets the service ID identifying the application.
func (q *Query) ServiceID(id string) *Query {
	q.serviceID = id
	return q
}

// Endpoint overrides the API endpoint, allowing use of community APIs
// exposing the same grammar. Custom endpoints are expected to embed
// their own authentication, so no service ID path segment is added.
func (q *Query) Endpoint(endpoint *url.URL) *Query {
	q.endpoint = endpoint
	return q
}

// AddTerm adds a filter term to the query.
func (q *Query) AddTerm(field string, value Value, modifier SearchModifier) *Query {
	q.terms = append(q.terms, NewTerm(field, value, modifier))
	return q
}

// Where adds one inferred term per map entry, parsing any modifier
// literals in string values.
func (q *Query) Where(terms Terms) *Query {
	q.addTermsMap(terms)
	return q
}

// Show sets the only fields to include in the result, clearing any
// hidden fields.
func (q *Query) Show(fields ...string) *Query {
	q.selection = ShowFields(fields)
	return q
}

// Hide sets the fields to exclude from the result, clearing any shown
// fields.
func (q *Query) Hide(fields ...string) *Query {
	q.selection = HideFields(fields)
	return q
}

// CreateJoin creates a new joined query for the given collection,
// appends it to this query and returns it.
func (q *Query) CreateJoin(collection string, terms ...Terms) *JoinedQuery {
	join := NewJoin(collection, terms...)
	q.joins = append(q.joins, join)
	return join
}

// AddJoin converts the given node into a joined query via the copy
// semantics of NewJoinFrom and appends it. The source node is left
// untouched. Fails with ErrMissingCollection if the node has no
// collection.
func (q *Query) AddJoin(node Node) error {
	join, err := NewJoinFrom(node, false, false)
	if err != nil {
		return err
	}
	q.joins = append(q.joins, join)
	return nil
}

// SetCase sets whether the query is case sensitive. Case-insensitive
// look-ups are significantly slower; where available, prefer a
// case-sensitive query targeting a lowercase field like
// "name.first_lower".
func (q *Query) SetCase(caseSensitive bool) *Query {
	q.caseSensitive = caseSensitive
	return q
}

// SetDistinct shows all unique values for the given field. Pass an
// empty string to disable.
func (q *Query) SetDistinct(field string) *Query {
	q.distinct = field
	return q
}

// SetExactMatchFirst promotes an exact match to the first item
// returned when performing RegEx searches (StartsWith or Contains),
// regardless of any sorting settings.
func (q *Query) SetExactMatchFirst(value bool) *Query {
	q.exactMatchFirst = value
	return q
}

// Has hides results with a null value at any of the given fields.
// Useful for filtering large collections by optional fields.
func (q *Query) Has(fields ...string) *Query {
	q.has = fields
	return q
}

// SetIncludeNull includes null values in the response. This only
// affects the top-level query; joined queries only show non-null
// values.
func (q *Query) SetIncludeNull(value bool) *Query {
	q.includeNull = value
	return q
}

// SetLocale restricts localised strings to the given locale. The
// identifier must be a well-formed language tag ("en", "de", ...);
// malformed tags fail with ErrInvalidLocale. Pass an empty string to
// include all localisations.
func (q *Query) SetLocale(locale string) error {
	if locale != "" {
		if _, err := language.Parse(locale); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
		}
	}
	q.lang = locale
	return nil
}

// SetLimit specifies the number of results returned. Limits below one
// fail with ErrInvalidLimit. This is mutually exclusive with
// SetLimitPerDB; setting one resets the other to its default.
func (q *Query) SetLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	q.limit = resultLimit{count: limit}
	return nil
}

// SetLimitPerDB specifies the number of results returned per database.
// This yields better spread for collections sharded across multiple
// databases, such as ps2/character. Limits below one fail with
// ErrInvalidLimit. Mutually exclusive with SetLimit.
func (q *Query) SetLimitPerDB(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	q.limit = resultLimit{perDB: true, count: limit}
	return nil
}

// Limit returns the active result limit and whether it applies per
// database.
func (q *Query) Limit() (limit int, perDB bool) {
	return q.limit.count, q.limit.perDB
}

// SetStart skips the given number of results. Together with SetLimit
// this creates a paginated view of the data. Negative offsets fail
// with ErrInvalidOffset.
func (q *Query) SetStart(start int) error {
	if start < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOffset, start)
	}
	q.start = start
	return nil
}

// Resolve attaches resolvable names to the query. Resolves are a
// lighter version of joined queries for quickly including associated
// data. Perform a query with no collection to list resolvable names.
func (q *Query) Resolve(names ...string) *Query {
	q.resolve = names
	return q
}

// SetRetry sets whether failed queries are retried automatically.
// Disable to fail early or control retries yourself.
func (q *Query) SetRetry(retry bool) *Query {
	q.retry = retry
	return q
}

// SortBy sorts the results by one or more keys. Multiple keys perform
// successive sorting passes.
func (q *Query) SortBy(keys ...SortKey) *Query {
	q.sortKeys = keys
	return q
}

// SortFields sorts the results by the given fields in ascending
// order.
func (q *Query) SortFields(fields ...string) *Query {
	keys := make([]SortKey, len(fields))
	for i, f := range fields {
		keys[i] = SortKey{Field: f}
	}
	q.sortKeys = keys
	return q
}

// SetTiming includes an additional "timing" key in the response with
// profiling information for the main query and any joins.
func (q *Query) SetTiming(value bool) *Query {
	q.timing = value
	return q
}

// AsTree reformats the result list into a data tree rooted at the
// given field. A non-empty TreeOptions.Start must be a non-negative
// integer, otherwise the call fails with ErrInvalidTreeStart.
func (q *Query) AsTree(opts TreeOptions) error {
	if opts.Start != "" {
		n, err := strconv.Atoi(opts.Start)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTreeStart, opts.Start)
		}
	}
	q.tree = &opts
	return nil
}
