package cart

import "encoding/json"

// SnapshotSchemaVersion is bumped whenever the persisted line-item shape
// changes. A stored snapshot with a different version rehydrates as an empty
// cart instead of guessing at the old layout.
const SnapshotSchemaVersion = 1

// Snapshot is the persisted form of a session's cart.
type Snapshot struct {
	SchemaVersion int        `json:"schema_version"`
	Items         []LineItem `json:"items"`
}

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a stored snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
