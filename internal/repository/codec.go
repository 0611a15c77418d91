package repository

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/segyhp/lending-registry/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeSnapshot serializes a snapshot to JSON
func EncodeSnapshot(snap *domain.RegistrySnapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", snap.Name, err)
	}
	return payload, nil
}

// DecodeSnapshot parses a payload written by EncodeSnapshot
func DecodeSnapshot(payload []byte) (*domain.RegistrySnapshot, error) {
	if !jsoniter.ConfigFastest.Valid(payload) {
		return nil, fmt.Errorf("decode snapshot: payload is not valid json")
	}
	var snap domain.RegistrySnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
