package census

// JoinedQuery is a sub-query attached to an existing query.
//
// Joined queries (or "joins") perform multiple related look-ups in a
// single request. The service embeds each join's results inside the
// parent record under an injection key; see InjectionKey for the
// naming rules.
//
// See Query.Resolve for a simpler but less powerful way of returning
// related data in the same request.
type JoinedQuery struct {
	queryBase

	fieldOn  string // linking field on the parent collection
	fieldTo  string // linking field on the joined collection
	isList   bool
	isOuter  bool
	injectAt string
}

// NewJoin creates a joined query for the given collection. Any Terms
// maps are converted to inferred search terms.
func NewJoin(collection string, terms ...Terms) *JoinedQuery {
	j := &JoinedQuery{
		queryBase: queryBase{collection: collection},
		isOuter:   true,
	}
	for _, t := range terms {
		j.addTermsMap(t)
	}
	return j
}

func (j *JoinedQuery) base() *queryBase { return &j.queryBase }

// AddTerm adds a filter term to the joined query.
func (j *JoinedQuery) AddTerm(field string, value Value, modifier SearchModifier) *JoinedQuery {
	j.terms = append(j.terms, NewTerm(field, value, modifier))
	return j
}

// Where adds one inferred term per map entry, parsing any modifier
// literals in string values.
func (j *JoinedQuery) Where(terms Terms) *JoinedQuery {
	j.addTermsMap(terms)
	return j
}

// Show sets the only fields to include in the result, clearing any
// hidden fields.
func (j *JoinedQuery) Show(fields ...string) *JoinedQuery {
	j.selection = ShowFields(fields)
	return j
}

// Hide sets the fields to exclude from the result, clearing any shown
// fields.
func (j *JoinedQuery) Hide(fields ...string) *JoinedQuery {
	j.selection = HideFields(fields)
	return j
}

// CreateJoin creates a nested joined query for the given collection,
// appends it to this join and returns it.
func (j *JoinedQuery) CreateJoin(collection string, terms ...Terms) *JoinedQuery {
	inner := NewJoin(collection, terms...)
	j.joins = append(j.joins, inner)
	return inner
}

// AddJoin converts the given node into a joined query via the copy
// semantics of NewJoinFrom and appends it as a nested join. Fails
// with ErrMissingCollection if the node has no collection.
func (j *JoinedQuery) AddJoin(node Node) error {
	inner, err := NewJoinFrom(node, false, false)
	if err != nil {
		return err
	}
	j.joins = append(j.joins, inner)
	return nil
}

// SetFields sets the field names linking the two collections. The API
// infers names like "<collection>_id" whenever possible; use this to
// override them. Either value may be empty to keep the inferred name.
// Specifying only the parent applies its value to both fields.
func (j *JoinedQuery) SetFields(parent, child string) *JoinedQuery {
	if parent != "" {
		j.fieldOn = parent
		if child == "" {
			j.fieldTo = parent
		}
	}
	if child != "" {
		j.fieldTo = child
	}
	return j
}

// SetList sets whether the join returns all matching elements rather
// than the first. Be wary of large relational collections; there is
// no limiting system for joins, just a hard cut-off after a few
// thousand elements.
func (j *JoinedQuery) SetList(isList bool) *JoinedQuery {
	j.isList = isList
	return j
}

// SetOuter sets whether the join is an outer join (the default) or an
// inner join. Outer joins include parent results regardless of
// whether the join's terms matched; inner joins discard parents
// without a match.
func (j *JoinedQuery) SetOuter(isOuter bool) *JoinedQuery {
	j.isOuter = isOuter
	return j
}

// SetInjectAt overrides the key the joined data is inserted at. Pass
// an empty string to restore the default naming scheme.
func (j *JoinedQuery) SetInjectAt(key string) *JoinedQuery {
	j.injectAt = key
	return j
}

// FieldOn returns the linking field on the parent collection, or an
// empty string when the API infers it.
func (j *JoinedQuery) FieldOn() string { return j.fieldOn }

// FieldTo returns the linking field on the joined collection, or an
// empty string when the API infers it.
func (j *JoinedQuery) FieldTo() string { return j.fieldTo }

// IsList reports whether the join returns a list of matches.
func (j *JoinedQuery) IsList() bool { return j.isList }

// IsOuter reports whether the join is an outer join.
func (j *JoinedQuery) IsOuter() bool { return j.isOuter }

// InjectAt returns the explicit injection key, or an empty string
// when the default naming scheme applies.
func (j *JoinedQuery) InjectAt() string { return j.injectAt }

// InjectionKey returns the response key the joined data is nested
// under: the explicit inject-at name if set, otherwise
// "<parent_field>_join_<collection>".
func (j *JoinedQuery) InjectionKey() string {
	if j.injectAt != "" {
		return j.injectAt
	}
	return j.fieldOn + "_join_" + j.collection
}
