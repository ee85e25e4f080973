package formenc

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedType is returned when the top-level value is not a map with
// string keys or an Ordered list, or when a nested value cannot be rendered.
var ErrUnsupportedType = errors.New("formenc: unsupported type")

// isoLayout matches JavaScript's Date.prototype.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ArrayFormat selects how slice values are expanded into keys.
type ArrayFormat int

const (
	// Indices renders a[0]=x&a[1]=y.
	Indices ArrayFormat = iota
	// Brackets renders a[]=x&a[]=y.
	Brackets
	// Repeat renders a=x&a=y.
	Repeat
)

// String returns the configuration name of the format.
func (f ArrayFormat) String() string {
	switch f {
	case Indices:
		return "indices"
	case Brackets:
		return "brackets"
	case Repeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// ParseArrayFormat converts a configuration name into an ArrayFormat.
func ParseArrayFormat(s string) (ArrayFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "indices":
		return Indices, nil
	case "brackets":
		return Brackets, nil
	case "repeat":
		return Repeat, nil
	default:
		return Indices, fmt.Errorf("formenc: unknown array format %q", s)
	}
}

// Field is a single key/value pair of an Ordered bag.
type Field struct {
	Key   string
	Value any
}

// Ordered is an attribute bag that keeps its insertion order on the wire.
type Ordered []Field

type options struct {
	arrayFormat ArrayFormat
	skipNulls   bool
	delimiter   string
}

// Option configures Encode.
type Option func(*options)

// WithArrayFormat sets the slice expansion strategy. Default: Indices.
func WithArrayFormat(f ArrayFormat) Option {
	return func(o *options) {
		o.arrayFormat = f
	}
}

// WithSkipNulls drops nil values instead of rendering them as "key=".
func WithSkipNulls() Option {
	return func(o *options) {
		o.skipNulls = true
	}
}

// WithDelimiter overrides the pair delimiter. Default: "&".
func WithDelimiter(d string) Option {
	return func(o *options) {
		if d != "" {
			o.delimiter = d
		}
	}
}

// Encode serializes v into application/x-www-form-urlencoded form.
// v must be a map with string keys or an Ordered bag.
func Encode(v any, opts ...Option) (string, error) {
	o := options{arrayFormat: Indices, delimiter: "&"}
	for _, opt := range opts {
		opt(&o)
	}

	e := &encoder{opts: o}
	switch top := v.(type) {
	case nil:
		return "", nil
	case Ordered:
		for _, f := range top {
			if err := e.encode(f.Key, f.Value); err != nil {
				return "", err
			}
		}
	default:
		rv := indirect(reflect.ValueOf(v))
		if !rv.IsValid() {
			return "", nil
		}
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return "", fmt.Errorf("%w: %T", ErrUnsupportedType, v)
		}
		if err := e.encodeMap("", rv); err != nil {
			return "", err
		}
	}

	return strings.Join(e.pairs, o.delimiter), nil
}

// Values is a convenience wrapper returning url.Values parsed from Encode output.
func Values(v any, opts ...Option) (url.Values, error) {
	s, err := Encode(v, opts...)
	if err != nil {
		return nil, err
	}
	return url.ParseQuery(s)
}

type encoder struct {
	opts  options
	pairs []string
}

func (e *encoder) add(key, value string) {
	e.pairs = append(e.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (e *encoder) encode(key string, v any) error {
	if v == nil {
		if !e.opts.skipNulls {
			e.add(key, "")
		}
		return nil
	}

	switch val := v.(type) {
	case Ordered:
		for _, f := range val {
			if err := e.encode(key+"["+f.Key+"]", f.Value); err != nil {
				return err
			}
		}
		return nil
	case time.Time:
		e.add(key, val.UTC().Format(isoLayout))
		return nil
	case *time.Time:
		if val == nil {
			return e.encode(key, nil)
		}
		e.add(key, val.UTC().Format(isoLayout))
		return nil
	case []byte:
		e.add(key, string(val))
		return nil
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return e.encode(key, nil)
		}
		e.add(key, val.String())
		return nil
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return e.encode(key, nil)
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s at %q", ErrUnsupportedType, rv.Type().Key(), key)
		}
		return e.encodeMap(key, rv)
	case reflect.Slice, reflect.Array:
		return e.encodeSlice(key, rv)
	case reflect.String:
		e.add(key, rv.String())
	case reflect.Bool:
		e.add(key, strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.add(key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e.add(key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		e.add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 32))
	case reflect.Float64:
		e.add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	default:
		return fmt.Errorf("%w: %s at %q", ErrUnsupportedType, rv.Type(), key)
	}
	return nil
}

func (e *encoder) encodeMap(prefix string, rv reflect.Value) error {
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "[" + k + "]"
		}
		val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		if err := e.encode(key, val.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeSlice(prefix string, rv reflect.Value) error {
	for i := range rv.Len() {
		var key string
		switch e.opts.arrayFormat {
		case Brackets:
			key = prefix + "[]"
		case Repeat:
			key = prefix
		default:
			key = prefix + "[" + strconv.Itoa(i) + "]"
		}
		if err := e.encode(key, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
