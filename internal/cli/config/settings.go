package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Settings are the free-form values read by [:get_config]. Nested keys are
// addressed with dots, e.g. "app.region".
type Settings struct {
	k *koanf.Koanf
}

// NewSettings returns settings holding values.
func NewSettings(values map[string]any) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, err
	}
	return &Settings{k: k}, nil
}

// Get implements macro.ConfigSource.
func (s *Settings) Get(key string) (any, bool) {
	if s == nil || s.k == nil || !s.k.Exists(key) {
		return nil, false
	}
	return s.k.Get(key), true
}

// Keys returns the flattened setting keys, sorted.
func (s *Settings) Keys() []string {
	if s == nil || s.k == nil {
		return nil
	}
	return s.k.Keys()
}

// All returns the settings as a flat key to value map.
func (s *Settings) All() map[string]any {
	if s == nil || s.k == nil {
		return map[string]any{}
	}
	return s.k.All()
}
