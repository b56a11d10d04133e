package sqlite

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Pragmas applied to every connection (e.g., journal_mode: wal)
	Pragmas map[string]string `mapstructure:"pragmas"`

	// BusyTimeout in milliseconds; 0 keeps the default of 5000
	BusyTimeout int `mapstructure:"busy_timeout"`

	// ForeignKeys enables foreign key enforcement (default true)
	ForeignKeys *bool `mapstructure:"foreign_keys"`
}

// ParseParams decodes raw adapter params.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid sqlite params: %w", err)
	}
	return p, nil
}

// buildDSN returns the modernc.org/sqlite data source name for path with
// the pragmas of p.
func buildDSN(path string, p Params) string {
	if path == "" {
		path = ":memory:"
	}

	pragmas := map[string]string{"busy_timeout": "5000", "foreign_keys": "1"}
	if p.BusyTimeout > 0 {
		pragmas["busy_timeout"] = fmt.Sprint(p.BusyTimeout)
	}
	if p.ForeignKeys != nil && !*p.ForeignKeys {
		pragmas["foreign_keys"] = "0"
	}
	for k, v := range p.Pragmas {
		pragmas[strings.ToLower(k)] = v
	}

	names := make([]string, 0, len(pragmas))
	for k := range pragmas {
		names = append(names, k)
	}
	sort.Strings(names)

	q := url.Values{}
	for _, k := range names {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", k, pragmas[k]))
	}
	return "file:" + path + "?" + q.Encode()
}

func isMemory(path string) bool {
	return path == "" || path == ":memory:" || strings.Contains(path, "mode=memory")
}
