package models

// Sentinel partition keys. UnknownKey buckets records missing the grouped
// field and always sorts after every other group; AllKey is the catch-all
// produced for an unrecognized criterion.
const (
	UnknownKey = "Unknown"
	AllKey     = "All"
)

// Group is a labeled, counted subset of records sharing a partition key.
// Groups are ephemeral: every grouping request produces a fresh slice and the
// previous one is discarded wholesale. Members reference the same Record
// values the working set holds; they are not cloned.
type Group struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Members []Record `json:"members"`
	Count   int      `json:"count"`
}
