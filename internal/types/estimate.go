package types

// RepoEstimate is the metadata-derived footprint of one mirror-list
// entry.
type RepoEstimate struct {
	Key        EntryKey
	IndexURL   string
	Bytes      int64
	Packages   int
	Superseded int
	Failed     bool
}

// SizeEstimate aggregates per-entry estimates for a selection. It is
// derived output, recomputed on demand and never persisted as
// authoritative.
type SizeEstimate struct {
	TotalBytes    int64
	TotalPackages int
	Repositories  []RepoEstimate
	Incomplete    bool
}
