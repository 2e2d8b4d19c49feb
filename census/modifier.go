package census

import "fmt"

// SearchModifier enumerates the search modifiers available for terms.
//
// Note that a given search modifier may not be valid for all fields.
// Each modifier maps to a one-character literal on the wire:
//
//	EqualTo: ''               LessThan: '<'
//	LessThanOrEqual: '['     GreaterThan: '>'
//	GreaterThanOrEqual: ']'  StartsWith: '^'
//	Contains: '*'            NotEqual: '!'
type SearchModifier int

const (
	EqualTo SearchModifier = iota
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	StartsWith
	Contains
	NotEqual
)

// modifierLiterals connects the wire literals to the enum values. The
// index of each element must match the corresponding SearchModifier.
var modifierLiterals = [...]string{"", "<", "[", ">", "]", "^", "*", "!"}

// Literal returns the wire literal for the modifier. This is an empty
// string for EqualTo. Out-of-range modifiers fail with
// ErrInvalidModifier.
func (m SearchModifier) Literal() (string, error) {
	if m < 0 || int(m) >= len(modifierLiterals) {
		return "", fmt.Errorf("%w: %d", ErrInvalidModifier, int(m))
	}
	return modifierLiterals[m], nil
}

// String implements fmt.Stringer for diagnostics. Unlike Literal, it
// never fails; unknown values render as "SearchModifier(n)".
func (m SearchModifier) String() string {
	names := [...]string{
		"EqualTo", "LessThan", "LessThanOrEqual", "GreaterThan",
		"GreaterThanOrEqual", "StartsWith", "Contains", "NotEqual",
	}
	if m < 0 || int(m) >= len(names) {
		return fmt.Sprintf("SearchModifier(%d)", int(m))
	}
	return names[m]
}

// ModifierFromValue infers the search modifier from a given value.
//
// If the value is a Str, its first character is compared against the
// wire literals and the matching modifier is returned. Any other value
// type, and strings without a leading literal, yield EqualTo.
func ModifierFromValue(v Value) SearchModifier {
	s, ok := v.(Str)
	if !ok || len(s) == 0 {
		return EqualTo
	}
	for i, lit := range modifierLiterals {
		if lit != "" && string(s[0]) == lit {
			return SearchModifier(i)
		}
	}
	return EqualTo
}
