package census

// SearchTerm represents a single query filter condition.
//
// Search terms reduce the result set before it is returned. This is
// particularly important for lists returned by joined queries, as they
// do not have access to limiting mechanisms like Query, easily
// resulting in excessively long return lists.
//
// Use InferTerm if you prefer defining search modifiers via their wire
// literals rather than the SearchModifier constants.
type SearchTerm struct {
	Field    string
	Value    Value
	Modifier SearchModifier
}

// NewTerm creates a search term comparing field against value with the
// given modifier.
func NewTerm(field string, value Value, modifier SearchModifier) SearchTerm {
	return SearchTerm{Field: field, Value: value, Modifier: modifier}
}

// InferTerm creates a search term, inferring the modifier from the
// value.
//
// If value is a Str whose first character matches a modifier literal,
// that modifier is used and the character is stripped from the value.
// Non-string values always keep EqualTo.
func InferTerm(field string, value Value) SearchTerm {
	term := SearchTerm{Field: field, Value: value, Modifier: ModifierFromValue(value)}
	if term.Modifier != EqualTo {
		// ModifierFromValue only returns non-EqualTo for Str values
		// with a leading literal, which must now be cut off.
		term.Value = value.(Str)[1:]
	}
	return term
}

// Serialise returns the wire representation of the search term, i.e.
// the "<field>=<literal><value>" string added to the URL query string.
func (t SearchTerm) Serialise() (string, error) {
	lit, err := t.Modifier.Literal()
	if err != nil {
		return "", err
	}
	return t.Field + "=" + lit + formatValue(t.Value), nil
}

// AsTuple returns the term as a key/value pair, with the modifier
// literal prefixed to the value.
func (t SearchTerm) AsTuple() (key, value string, err error) {
	lit, err := t.Modifier.Literal()
	if err != nil {
		return "", "", err
	}
	return t.Field, lit + formatValue(t.Value), nil
}
