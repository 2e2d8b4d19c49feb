package rest

import (
	"fmt"
	"log/slog"

	"github.com/leonhard-s/auraxium-go/census"
)

// Record is a single decoded result row.
type Record = map[string]any

// ExtractPayload retrieves the list of matches from a response
// payload. The service wraps results in a "<collection>_list" key;
// a payload without that key fails with a PayloadError.
func ExtractPayload(payload Payload, collection string) ([]Record, error) {
	key := collection + "_list"
	raw, ok := payload[key]
	if !ok {
		return nil, &PayloadError{Key: key, Payload: payload}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &PayloadError{Key: key, Payload: payload}
	}
	records := make([]Record, 0, len(list))
	for _, item := range list {
		record, ok := item.(Record)
		if !ok {
			return nil, &PayloadError{Key: key, Payload: payload}
		}
		records = append(records, record)
	}
	return records, nil
}

// ExtractSingle retrieves a single match from a response payload,
// returning ErrNotFound when there are none. Queries passed to this
// helper should set a limit of 1; if the payload holds more than one
// match anyway, the first is returned and a warning is logged.
func ExtractSingle(payload Payload, collection string, log *slog.Logger) (Record, error) {
	records, err := ExtractPayload(payload, collection)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	if len(records) > 1 && log != nil {
		log.Warn("ExtractSingle got a multi-result payload, discarding extras",
			slog.String("collection", collection),
			slog.Int("matches", len(records)))
	}
	return records[0], nil
}

// ResolveNested flattens the payload of a query with joins into the
// records of the innermost join.
//
// The service nests each join's results inside its parent record
// under the join's injection key. This walks the join tree and
// returns the records contributed at the leaves, depth first and in
// sibling order. Parent records without a value under an injection
// key (outer joins that found no match) contribute nothing.
//
// A query without joins resolves to its own records.
func ResolveNested(q *census.Query, payload Payload) ([]Record, error) {
	records, err := ExtractPayload(payload, q.Collection())
	if err != nil {
		return nil, err
	}
	joins := q.Joins()
	if len(joins) == 0 {
		return records, nil
	}
	var out []Record
	for _, join := range joins {
		inner, err := resolveJoin(join, records)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// resolveJoin collects the records the given join injected into each
// of the parent records, recursing into nested joins.
func resolveJoin(j *census.JoinedQuery, parents []Record) ([]Record, error) {
	if j.FieldOn() == "" && j.InjectAt() == "" {
		return nil, fmt.Errorf(
			"cannot resolve join on %q: no parent field or injection key set",
			j.Collection())
	}
	key := j.InjectionKey()
	var records []Record
	for _, parent := range parents {
		raw, ok := parent[key]
		if !ok || raw == nil {
			continue
		}
		if j.IsList() {
			list, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf(
					"join key %q: expected a list, got %T", key, raw)
			}
			for _, item := range list {
				record, ok := item.(Record)
				if !ok {
					return nil, fmt.Errorf(
						"join key %q: expected an object, got %T", key, item)
				}
				records = append(records, record)
			}
		} else {
			record, ok := raw.(Record)
			if !ok {
				return nil, fmt.Errorf(
					"join key %q: expected an object, got %T", key, raw)
			}
			records = append(records, record)
		}
	}
	inner := j.Joins()
	if len(inner) == 0 {
		return records, nil
	}
	var out []Record
	for _, nested := range inner {
		r, err := resolveJoin(nested, records)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}
