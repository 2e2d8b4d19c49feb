package rest

import (
	"net/url"
	"slices"
	"strings"
)

// RaiseForPayload inspects a decoded response payload and returns the
// typed error it describes, or nil for a healthy payload.
//
// The service reports failures in two shapes: a plain-text "error"
// key, and an "errorCode"/"errorMessage" pair. Both are matched
// against the known message catalogue; anything unrecognised falls
// back to ServerError or CensusError so that new failure modes still
// surface as errors rather than empty results.
//
// The request URL is used to disambiguate messages that do not name
// their cause, such as telling an unknown namespace from an unknown
// collection.
func RaiseForPayload(payload Payload, u *url.URL) error {
	if raw, ok := payload["error"]; ok {
		msg, _ := raw.(string)
		switch {
		case msg == "No data found.":
			namespace, collection := pathComponents(u)
			// The API returns the same error for unknown namespaces
			// and collections; only the URL path tells them apart.
			if collection == "" {
				return &UnknownNamespaceError{Namespace: namespace, URL: u.String()}
			}
			return &UnknownCollectionError{
				Namespace: namespace, Collection: collection, URL: u.String()}
		case msg == "Bad request syntax.":
			return &BadRequestSyntaxError{URL: u.String()}
		case msg == "service_unavailable":
			return &ServiceUnavailableError{URL: u.String()}
		case strings.HasPrefix(msg, "Provided Service ID is not registered."):
			return &InvalidServiceIDError{URL: u.String()}
		case strings.HasPrefix(msg, "Missing Service ID."):
			return &MissingServiceIDError{URL: u.String()}
		default:
			return &ServerError{Message: msg, URL: u.String()}
		}
	}
	if raw, ok := payload["errorCode"]; ok {
		code, _ := raw.(string)
		msg, _ := payload["errorMessage"].(string)
		if code == "SERVER_ERROR" {
			if strings.HasPrefix(msg, "INVALID_SEARCH_TERM") {
				return invalidSearchTerm(msg, u)
			}
			return &ServerError{Message: msg, URL: u.String()}
		}
		if msg == "" {
			msg = "(no message)"
		}
		return &CensusError{Code: code, Message: msg, URL: u.String()}
	}
	return nil
}

// invalidSearchTerm processes an INVALID_SEARCH_TERM error message,
// introspecting the request URL to identify the offending field where
// the message itself does not name it.
func invalidSearchTerm(msg string, u *url.URL) error {
	namespace, collection := pathComponents(u)
	mk := func(field, detail string) error {
		return &InvalidSearchTermError{
			Namespace:  namespace,
			Collection: collection,
			Field:      field,
			Message:    detail,
			URL:        u.String(),
		}
	}
	chopped := strings.TrimSpace(strings.TrimPrefix(
		strings.TrimPrefix(msg, "INVALID_SEARCH_TERM:"), "INVALID_SEARCH_TERM"))

	switch {
	case strings.HasPrefix(chopped, "Invalid search term. Valid search terms:"):
		// The message lists the valid fields; compare them against
		// the query keys, in order, to find the culprit.
		valid := validFieldList(chopped)
		field := "unknown"
		for _, pair := range queryPairs(u.RawQuery) {
			if !slices.Contains(valid, pair[0]) {
				field = pair[0]
				break
			}
		}
		return mk(field, "invalid query key "+field)

	case strings.HasPrefix(chopped, "Invalid search term:"):
		field, value := fieldValueAfterColon(chopped)
		return mk(field, "invalid value "+value+" for term "+field)

	case strings.HasPrefix(chopped, "Invalid search value for term:"):
		field, value := fieldValueAfterColon(chopped)
		return mk(field, "invalid value "+value+" for term "+field)

	case strings.HasPrefix(chopped, "c:show or c:hide resulted"):
		method := "c:hide"
		if strings.Contains(u.RawQuery, "c:show") {
			method = "c:show"
		}
		return mk(method, "no valid field names in "+method+" list")
	}
	return &ServerError{Message: msg, URL: u.String()}
}

// pathComponents extracts the namespace and collection from a request
// URL path. The leading service ID segment, an optional format
// segment and the query verb are skipped; the collection is empty for
// namespace-level queries.
func pathComponents(u *url.URL) (namespace, collection string) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "s:") {
		parts = parts[1:]
	}
	if len(parts) > 0 && (parts[0] == "xml" || parts[0] == "json") {
		parts = parts[1:]
	}
	if len(parts) > 0 { // verb
		parts = parts[1:]
	}
	if len(parts) > 0 {
		namespace = parts[0]
		parts = parts[1:]
	}
	if len(parts) > 0 {
		collection = parts[0]
	}
	return namespace, collection
}

// validFieldList parses the bracketed field list out of a "Valid
// search terms: [a, b, c]" message.
func validFieldList(chopped string) []string {
	open := strings.IndexByte(chopped, '[')
	close_ := strings.LastIndexByte(chopped, ']')
	if open < 0 || close_ < open {
		return nil
	}
	raw := strings.Split(chopped[open+1:close_], ",")
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// fieldValueAfterColon extracts "<field>=<value>" from the tail of an
// error message, after its last colon.
func fieldValueAfterColon(chopped string) (field, value string) {
	tail := chopped
	if i := strings.LastIndexByte(chopped, ':'); i >= 0 {
		tail = chopped[i+1:]
	}
	tail = strings.TrimSpace(tail)
	if i := strings.IndexByte(tail, '='); i >= 0 {
		return strings.TrimSpace(tail[:i]), strings.TrimSpace(tail[i+1:])
	}
	if i := strings.IndexByte(tail, ' '); i >= 0 {
		tail = tail[:i]
	}
	return tail, ""
}

// queryPairs splits a raw query string into ordered key/value pairs.
// The standard library's url.Values loses the original ordering,
// which the culprit search depends on.
func queryPairs(rawQuery string) [][2]string {
	if rawQuery == "" {
		return nil
	}
	parts := strings.Split(rawQuery, "&")
	pairs := make([][2]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs
}
