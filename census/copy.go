package census

import "slices"

// NewQueryFrom creates a top-level query, copying most data from the
// template node.
//
// The new query shares the collection, terms and show/hide selection
// of the template. With copyJoins set it also carries over the join
// list. By default the copy is shallow: term and join slices are
// shared with the template, so mutating one mutates the other. Set
// deep for complete independence.
//
// When the template is itself a top-level query, all of its commands
// (namespace, limits, sorting, ...) are carried over as well. When the
// template is a joined list, the new query is given an arbitrary
// 10000-result limit, since joined lists have no set length.
func NewQueryFrom(template Node, copyJoins, deep bool) *Query {
	q := NewQuery(template.base().collection)
	copyBase(&q.queryBase, template.base(), copyJoins, deep)
	switch t := template.(type) {
	case *Query:
		q.namespace = t.namespace
		q.serviceID = t.serviceID
		q.endpoint = t.endpoint
		q.caseSensitive = t.caseSensitive
		q.distinct = t.distinct
		q.exactMatchFirst = t.exactMatchFirst
		q.has = copyStrings(t.has, deep)
		q.includeNull = t.includeNull
		q.lang = t.lang
		q.limit = t.limit
		q.resolve = copyStrings(t.resolve, deep)
		q.retry = t.retry
		q.sortKeys = copySortKeys(t.sortKeys, deep)
		q.start = t.start
		q.timing = t.timing
		if t.tree != nil {
			tree := *t.tree
			q.tree = &tree
		}
	case *JoinedQuery:
		if t.isList {
			// Joined lists have no set length, so this might fall
			// short for very long or complex joins.
			q.limit = resultLimit{count: 10000}
		}
	}
	return q
}

// NewJoinFrom creates a joined query, copying most data from the
// template node. See NewQueryFrom for the shared copy semantics.
//
// A joined query cannot exist without a collection; templates without
// one fail with ErrMissingCollection.
//
// When the template is a top-level query with a limit above one, the
// new join is flagged as a list join: a multi-result query used as a
// join template implies a list of results.
func NewJoinFrom(template Node, copyJoins, deep bool) (*JoinedQuery, error) {
	if template.base().collection == "" {
		return nil, ErrMissingCollection
	}
	j := NewJoin(template.base().collection)
	copyBase(&j.queryBase, template.base(), copyJoins, deep)
	switch t := template.(type) {
	case *JoinedQuery:
		j.injectAt = t.injectAt
		j.isList = t.isList
		j.isOuter = t.isOuter
		j.fieldOn = t.fieldOn
		j.fieldTo = t.fieldTo
	case *Query:
		if limit, _ := t.Limit(); limit > 1 {
			j.isList = true
		}
	}
	return j, nil
}

// copyBase carries the shared node data from src into dst. The
// collection is expected to be set already.
func copyBase(dst, src *queryBase, copyJoins, deep bool) {
	if deep {
		dst.terms = slices.Clone(src.terms)
	} else {
		dst.terms = src.terms
	}
	dst.selection = copySelection(src.selection, deep)
	if copyJoins {
		dst.joins = copyJoinList(src.joins, deep)
	}
}

func copySelection(sel FieldSelection, deep bool) FieldSelection {
	if !deep {
		return sel
	}
	switch s := sel.(type) {
	case ShowFields:
		return ShowFields(slices.Clone(s))
	case HideFields:
		return HideFields(slices.Clone(s))
	default:
		return nil
	}
}

func copyStrings(s []string, deep bool) []string {
	if deep {
		return slices.Clone(s)
	}
	return s
}

func copySortKeys(keys []SortKey, deep bool) []SortKey {
	if deep {
		return slices.Clone(keys)
	}
	return keys
}

func copyJoinList(joins []*JoinedQuery, deep bool) []*JoinedQuery {
	if !deep {
		return joins
	}
	out := make([]*JoinedQuery, len(joins))
	for i, j := range joins {
		clone := &JoinedQuery{
			queryBase: queryBase{
				collection: j.collection,
				terms:      slices.Clone(j.terms),
				selection:  copySelection(j.selection, true),
				joins:      copyJoinList(j.joins, true),
			},
			fieldOn:  j.fieldOn,
			fieldTo:  j.fieldTo,
			isList:   j.isList,
			isOuter:  j.isOuter,
			injectAt: j.injectAt,
		}
		out[i] = clone
	}
	return out
}
