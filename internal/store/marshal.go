package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/simconfig/internal/config"
)

// marshalSources converts the source list to canonical JSON TEXT.
func marshalSources(sources []string) (string, error) {
	if sources == nil {
		sources = []string{}
	}
	data, err := config.MarshalCanonical(sources)
	if err != nil {
		return "", fmt.Errorf("marshal sources: %w", err)
	}
	return string(data), nil
}

// unmarshalSources parses the source list stored by marshalSources.
func unmarshalSources(data string) ([]string, error) {
	sources := []string{}
	if data == "" {
		return sources, nil
	}
	if err := json.Unmarshal([]byte(data), &sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	return sources, nil
}
