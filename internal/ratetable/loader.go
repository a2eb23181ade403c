package ratetable

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON rate table. An empty path yields the default table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rate table %s: %w", path, err)
	}

	return New(cfg)
}
