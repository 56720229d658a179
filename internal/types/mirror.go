package types

// MirrorListEntry is one source line of the mirror-list document. The
// upstream URL is stored without the embedded credential; embedding
// happens only at document render time so the model never carries the
// secret in cleartext.
type MirrorListEntry struct {
	Entitlement  string
	BaseURL      string
	Suite        string
	Components   []string
	Architecture string
	Source       bool
}

// EntryKey identifies an entry across reconcile runs. Source entries
// are architecture-independent, so their key carries no architecture.
type EntryKey struct {
	Entitlement  string
	Suite        string
	Architecture string
	Source       bool
}

// Key returns the reconciliation identity of the entry.
func (e MirrorListEntry) Key() EntryKey {
	arch := e.Architecture
	if e.Source {
		arch = ""
	}
	return EntryKey{
		Entitlement:  e.Entitlement,
		Suite:        e.Suite,
		Architecture: arch,
		Source:       e.Source,
	}
}

// Selection is the immutable parameter bundle for one build or
// estimate invocation. No component reads ambient globals.
type Selection struct {
	Release       string
	Architectures []string
	Entitlements  []string
	IncludeSource bool
	MirrorHost    string
	MirrorPort    int
}

// SkippedEntitlement records a requested entitlement that produced no
// entries, with the reason it was skipped.
type SkippedEntitlement struct {
	Name   string
	Reason string
}
