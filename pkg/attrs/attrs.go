// Package attrs reads values back out of the variadic argument lists passed
// to slog, which mix loose key/value pairs with slog.Attr values.
package attrs

import "log/slog"

// Lookup returns the first value recorded under key.
func Lookup(args []any, key string) (any, bool) {
	for i := 0; i < len(args); {
		switch k := args[i].(type) {
		case slog.Attr:
			if k.Key == key {
				return k.Value.Any(), true
			}
			i++
		case string:
			if i+1 >= len(args) {
				return nil, false
			}
			if k == key {
				return args[i+1], true
			}
			i += 2
		default:
			i += 2
		}
	}
	return nil, false
}

// ExtractString returns the string recorded under key, or "" if the key is
// missing or holds a non-string value.
func ExtractString(args []any, key string) string {
	v, _ := Lookup(args, key)
	s, _ := v.(string)
	return s
}
