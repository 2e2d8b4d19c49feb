package census

import "strconv"

// Value is a sealed interface representing the primitive types the API
// accepts as term values. Only Str, Int and Float implement it.
type Value interface {
	censusValue() // Sealed - only these types implement it
}

// Str represents a string term value.
type Str string

func (Str) censusValue() {}

// Int represents an integer term value.
type Int int64

func (Int) censusValue() {}

// Float represents a floating point term value.
//
// The API parses decimal literals for a handful of numeric fields
// (e.g. cooldowns in seconds). Floats never participate in identity
// or ordering decisions on the client side.
type Float float64

func (Float) censusValue() {}

// formatValue renders a Value in its wire form.
func formatValue(v Value) string {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	default:
		// Unreachable for sealed values; nil yields an empty literal.
		return ""
	}
}
