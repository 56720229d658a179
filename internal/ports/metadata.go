package ports

import (
	"context"

	"pop-mirror/internal/types"
)

// RepoIndexStats summarizes one repository index file without
// touching package payloads.
type RepoIndexStats struct {
	Bytes      int64
	Packages   int
	Superseded int
}

// RepoMetadataPort fetches lightweight repository index metadata for
// size estimation.
type RepoMetadataPort interface {
	FetchIndex(ctx context.Context, entry types.MirrorListEntry, credential string) (RepoIndexStats, error)
}
