package domain

// Snapshot is a full, consistent, read-only copy of the session at one
// instant. It is what every viewer receives on each broadcast tick.
type Snapshot struct {
	Viewers map[string]Viewer `json:"viewers"`
	Rooms   map[string]Room   `json:"rooms"`
}
