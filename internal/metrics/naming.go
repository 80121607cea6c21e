package metrics

import (
	"regexp"
	"strings"
)

const (
	// Separator joins the base segment and every modifier segment of a name.
	Separator = "__"

	// KeyValueSeparator splits a modifier segment into its key and value.
	KeyValueSeparator = ":"
)

var modifierPattern = regexp.MustCompile(`^[\w\-]+:[\w\-]+$`)

// Modifier is a single key:value qualifier of a composite metric name.
type Modifier struct {
	Key   string
	Value string
}

// String returns the modifier in its segment form, "key:value".
func (m Modifier) String() string {
	return m.Key + KeyValueSeparator + m.Value
}

// Modifiers is an ordered modifier mapping. Iteration order matches the
// order in which the modifiers appear in the name, left to right.
type Modifiers []Modifier

// Get returns the value for key and whether it is present.
func (m Modifiers) Get(key string) (string, bool) {
	for _, mod := range m {
		if mod.Key == key {
			return mod.Value, true
		}
	}
	return "", false
}

// Keys returns the modifier keys in order.
func (m Modifiers) Keys() []string {
	keys := make([]string, len(m))
	for i, mod := range m {
		keys[i] = mod.Key
	}
	return keys
}

// Map returns an unordered copy of the modifiers.
func (m Modifiers) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, mod := range m {
		out[mod.Key] = mod.Value
	}
	return out
}

// ParseName splits a composite metric name into its base and modifiers.
//
// Trailing segments of the form key:value are stripped one at a time from
// the end of the name; the first trailing segment that is not shaped like a
// modifier stops the scan and everything before it becomes the base. The
// leading segment always belongs to the base, so a name never parses to an
// empty base; "a:b" is the base "a:b" rather than a lone modifier.
//
// When the same key appears twice, the leftmost value wins and the key keeps
// the position of its rightmost occurrence. For example
// "m__a:1__b:2__a:3" parses to base "m" with modifiers [b:2 a:1].
func ParseName(name string) (string, Modifiers) {
	parts := strings.Split(name, Separator)

	var popped Modifiers
	for len(parts) > 1 {
		last := parts[len(parts)-1]
		if !modifierPattern.MatchString(last) {
			break
		}
		parts = parts[:len(parts)-1]

		key, value, _ := strings.Cut(last, KeyValueSeparator)
		if i := popped.index(key); i >= 0 {
			popped[i].Value = value
			continue
		}
		popped = append(popped, Modifier{Key: key, Value: value})
	}

	// popped is in right-to-left order
	var modifiers Modifiers
	for i := len(popped) - 1; i >= 0; i-- {
		modifiers = append(modifiers, popped[i])
	}

	return strings.Join(parts, Separator), modifiers
}

// JoinName builds a composite metric name from a base and its modifiers.
func JoinName(base string, modifiers Modifiers) string {
	var sb strings.Builder
	sb.WriteString(base)
	for _, mod := range modifiers {
		sb.WriteString(Separator)
		sb.WriteString(mod.String())
	}
	return sb.String()
}

// BaseName returns the base segment of name.
func BaseName(name string) string {
	base, _ := ParseName(name)
	return base
}

func (m Modifiers) index(key string) int {
	for i, mod := range m {
		if mod.Key == key {
			return i
		}
	}
	return -1
}
