package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses a JSON or YAML document on top of the defaults and compiles
// the result. Keys missing from the document keep their default values.
func Load(data []byte, source string) (*Compiled, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: file %s is empty", source)
	}

	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", source, err)
	}

	compiled, err := cfg.Compile()
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", source, err)
	}
	return compiled, nil
}

// LoadFile reads and compiles the configuration stored at path.
func LoadFile(path string) (*Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data, path)
}

// LoadFS reads and compiles the configuration stored at name inside fsys.
func LoadFS(fsys fs.FS, name string) (*Compiled, error) {
	if fsys == nil {
		return nil, fmt.Errorf("config: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", name, err)
	}
	return Load(data, name)
}

func decode(data []byte, cfg *Config) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		candidate := *cfg
		if err := json.Unmarshal(data, &candidate); err == nil {
			*cfg = candidate
			return nil
		}
	}
	// JSON durations such as "250ms" only decode through yaml.v3, which
	// accepts JSON documents as well.
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("invalid JSON or YAML: %w", err)
	}
	return nil
}
