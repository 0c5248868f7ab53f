package jwtcookie

import "fmt"

// Claims is a decoded token payload: claim name to value. Values are strings,
// bools, numbers, or nested string-keyed dictionaries, matching whatever the
// token issuer put in the payload.
type Claims map[string]any

// Username returns the username claim, preferring preferred_username over
// username. The boolean is false when neither claim carries a value.
func (c Claims) Username() (string, bool) {
	for _, name := range []string{"preferred_username", "username"} {
		if v, ok := c[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Has reports whether the claim exists with a non-nil value. A present false
// or empty string still counts as present.
func (c Claims) Has(name string) bool {
	v, ok := c[name]
	return ok && v != nil
}

// Get returns the raw claim value.
func (c Claims) Get(name string) (any, bool) {
	v, ok := c[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// GetString returns the claim coerced to a string. Numbers and bools are
// formatted; nested dictionaries are not.
func (c Claims) GetString(name string) (string, bool) {
	v, ok := c.Get(name)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return fmt.Sprintf("%t", val), true
	case float64:
		return fmt.Sprintf("%v", val), true
	case int:
		return fmt.Sprintf("%d", val), true
	default:
		return "", false
	}
}

// GetDict returns a dictionary-valued claim. Both map[string]any and
// map[string]string payload shapes are accepted, since JSON decoding and
// callers constructing claims by hand produce different concrete types.
func (c Claims) GetDict(name string) (map[string]any, bool) {
	v, ok := c.Get(name)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// IsZero reports whether the claim is absent or holds an empty value (nil,
// empty string, empty dictionary, false). Mergeable attributes skip zero
// claims so a stale token can never wipe accumulated state.
func (c Claims) IsZero(name string) bool {
	v, ok := c[name]
	if !ok || v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case bool:
		return !val
	case map[string]any:
		return len(val) == 0
	case map[string]string:
		return len(val) == 0
	default:
		return false
	}
}
