package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TOML is a koanf.Parser backed by BurntSushi/toml.
type TOML struct{}

// Unmarshal parses TOML bytes into a nested map.
func (TOML) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (TOML) Marshal(o map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
