package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/domainsuffixes/internal/registry"
)

const formatVersion = registry.SnapshotVersion

// Encode serializes reg.
func Encode(reg *registry.Registry) ([]byte, error) {
	data, err := json.Marshal(reg.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode restores a registry from Encode output.
func Decode(data []byte) (*registry.Registry, error) {
	var s registry.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	reg, err := registry.FromSnapshot(&s)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return reg, nil
}
