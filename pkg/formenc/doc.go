// Package formenc serializes nested attribute bags into
// application/x-www-form-urlencoded strings.
//
// Nested maps become bracketed key paths and slices are expanded according to
// the configured ArrayFormat:
//
//	formenc.Encode(map[string]any{"a": map[string]any{"b": 1}})
//	// a%5Bb%5D=1
//
//	formenc.Encode(map[string]any{"a": []int{1, 2}}, formenc.WithArrayFormat(formenc.Indices))
//	// a%5B0%5D=1&a%5B1%5D=2
//
//	formenc.Encode(map[string]any{"a": []int{1, 2}}, formenc.WithArrayFormat(formenc.Brackets))
//	// a%5B%5D=1&a%5B%5D=2
//
//	formenc.Encode(map[string]any{"a": []int{1, 2}}, formenc.WithArrayFormat(formenc.Repeat))
//	// a=1&a=2
//
// Scalars are rendered with strconv, time.Time values as ISO-8601 in UTC with
// millisecond precision, and nil as an empty string (or skipped entirely with
// WithSkipNulls).
//
// Go maps have no iteration order, so map keys are emitted in sorted order.
// Use Ordered when the caller needs a specific field order on the wire:
//
//	formenc.Encode(formenc.Ordered{
//		{Key: "username", Value: "alice"},
//		{Key: "password", Value: "secret"},
//	})
//	// username=alice&password=secret
//
// The package is pure: no I/O, no shared state.
package formenc
