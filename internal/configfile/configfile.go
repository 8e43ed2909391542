// Package configfile reads and writes JSON, YAML, and TOML configuration
// files as nested maps, with dotted-path access and environment overrides.
package configfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

// Map is a nested configuration document.
type Map = map[string]interface{}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yml", ".yaml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", errors.NewConfigError(errors.ErrCodeConfigInvalid,
		"unsupported config format: "+filepath.Ext(path))
}

// Read parses a config file into a nested map. The format follows the file
// extension (.json, .yml/.yaml, .toml).
func Read(path string) (Map, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrFileNotFound(path)
	}

	cfg := Map{}
	switch format {
	case "json":
		err = json.Unmarshal(data, &cfg)
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			"failed to parse "+format+" config: "+err.Error()).WithPath(path)
	}
	return cfg, nil
}

// Write serializes a nested map to a config file in the format the file
// extension names.
func Write(path string, cfg Map) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	}
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			"failed to serialize "+format+" config: "+err.Error()).WithPath(path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to write config file", err).WithPath(path)
	}
	return nil
}

// WriteDefault writes cfg to path only when the file does not exist yet.
// It reports whether the file was written.
func WriteDefault(path string, cfg Map) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := Write(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// Get looks up a dotted path ("server.port") in a nested map. The second
// return value reports whether the key exists.
func Get(cfg Map, path string) (interface{}, bool) {
	keys := strings.Split(path, ".")
	current := interface{}(cfg)
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString looks up a dotted path and returns it as a string, or fallback
// when absent or not a string.
func GetString(cfg Map, path, fallback string) string {
	v, ok := Get(cfg, path)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// Set writes a value at a dotted path, creating intermediate maps as
// needed. It fails when a path segment crosses a non-map value.
func Set(cfg Map, path string, value interface{}) error {
	keys := strings.Split(path, ".")
	current := cfg
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key]
		if !ok {
			child := Map{}
			current[key] = child
			current = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				"cannot set "+path+": "+key+" is not a map")
		}
		current = child
	}
	current[keys[len(keys)-1]] = value
	return nil
}

// Merge deep-merges override into base and returns the result. Maps merge
// recursively; any other value in override wins. Neither input is mutated.
func Merge(base, override Map) Map {
	merged := make(Map, len(base))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		baseMap, baseOK := merged[k].(map[string]interface{})
		overMap, overOK := v.(map[string]interface{})
		if baseOK && overOK {
			merged[k] = Merge(baseMap, overMap)
			continue
		}
		merged[k] = v
	}
	return merged
}

// ApplyEnv overrides config values from environment variables. A variable
// PREFIX_SERVER_PORT=9090 sets the dotted path "server.port". Only paths
// already present in cfg are overridden; values stay strings.
func ApplyEnv(cfg Map, prefix string) int {
	prefix = strings.ToUpper(prefix) + "_"
	applied := 0
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		path := strings.ToLower(strings.ReplaceAll(
			strings.TrimPrefix(name, prefix), "_", "."))
		if _, exists := Get(cfg, path); !exists {
			continue
		}
		if Set(cfg, path, value) == nil {
			applied++
		}
	}
	return applied
}
