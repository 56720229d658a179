package ports

import "pop-mirror/internal/types"

// MirrorListStorePort persists the mirror-list document. WriteDocument
// must be atomic: the rename of the fully written temporary file is
// the reconciler's single commit point.
type MirrorListStorePort interface {
	ReadDocument() (string, bool, error)
	WriteDocument(document string) error
}

// AuthFilePort materializes the apt authentication file consumed by
// the downstream mirroring tool.
type AuthFilePort interface {
	Write(entries []types.MirrorListEntry, credentials types.CredentialSet) error
}
