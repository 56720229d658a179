package types

// ChangeAction classifies one entry key in a reconciliation plan.
type ChangeAction string

const (
	ChangeUnchanged ChangeAction = "unchanged"
	ChangeRotated   ChangeAction = "rotated"
	ChangeAdded     ChangeAction = "added"
	ChangeRemoved   ChangeAction = "removed"
)

// EntryChange pairs an entry with its classification. Entry is the
// new entry for added/rotated/unchanged and the previous entry for
// removed.
type EntryChange struct {
	Entry  MirrorListEntry
	Action ChangeAction
}

// ReconciliationPlan is the diff between the previously persisted
// mirror state and a freshly built one. Created fresh per reconfigure
// run and discarded after application.
type ReconciliationPlan struct {
	Changes []EntryChange

	// PruneKeyrings lists entitlement types whose signing-key
	// material is no longer referenced by any remaining entry.
	PruneKeyrings []string
}

// Count returns the number of changes with the given action.
func (p ReconciliationPlan) Count(action ChangeAction) int {
	n := 0
	for _, change := range p.Changes {
		if change.Action == action {
			n++
		}
	}
	return n
}

// Dirty reports whether applying the plan changes the persisted
// document.
func (p ReconciliationPlan) Dirty() bool {
	for _, change := range p.Changes {
		if change.Action != ChangeUnchanged {
			return true
		}
	}
	return false
}
