package macro

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/portsql/pkg/dberr"
)

// Typed adapts a handler that takes its arguments as a struct. Fields are
// bound by their `macro` tag; a ",required" option makes the argument
// mandatory. Arguments without a matching field are rejected.
//
//	type tableArgs struct {
//		Schema string `macro:"schema"`
//		Name   string `macro:"name,required"`
//	}
func Typed[T any](fn func(args T, mc Context) (string, error)) Handler {
	required := requiredFields(reflect.TypeFor[T]())
	return func(args Args, mc Context) (string, error) {
		var missing []string
		for _, name := range required {
			if _, ok := args[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return "", dberr.Errorf(dberr.KindProgramming, "missing required argument(s): %s", strings.Join(missing, ", "))
		}

		var decoded T
		if err := decodeArgs(args, &decoded); err != nil {
			return "", err
		}
		return fn(decoded, mc)
	}
}

func decodeArgs(args Args, out any) error {
	var meta mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "macro",
		WeaklyTypedInput: true,
		Metadata:         &meta,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("building argument decoder: %w", err)
	}
	if err := dec.Decode(map[string]string(args)); err != nil {
		return dberr.Errorf(dberr.KindProgramming, "invalid arguments: %w", err)
	}
	if len(meta.Unused) > 0 {
		sort.Strings(meta.Unused)
		return dberr.Errorf(dberr.KindProgramming, "unexpected argument(s): %s", strings.Join(meta.Unused, ", "))
	}
	return nil
}

func requiredFields(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := range t.NumField() {
		name, opts, _ := strings.Cut(t.Field(i).Tag.Get("macro"), ",")
		if name == "" {
			continue
		}
		for _, opt := range strings.Split(opts, ",") {
			if opt == "required" {
				names = append(names, name)
			}
		}
	}
	return names
}

// NoArgs adapts a handler for operations that take no arguments.
func NoArgs(fn func(mc Context) (string, error)) Handler {
	return func(args Args, mc Context) (string, error) {
		if len(args) > 0 {
			keys := make([]string, 0, len(args))
			for k := range args {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return "", dberr.Errorf(dberr.KindProgramming, "unexpected argument(s): %s", strings.Join(keys, ", "))
		}
		return fn(mc)
	}
}

// Literal returns a handler that takes no arguments and expands to text.
func Literal(text string) Handler {
	return NoArgs(func(Context) (string, error) { return text, nil })
}
