package core

import (
	"sort"

	"pop-mirror/internal/types"
)

// Diff computes the reconciliation plan between the previously
// persisted entry set and a freshly built one. Each entry key is
// classified exactly once: unchanged (same credential), rotated (same
// key, new credential), added, or removed. Keyring material whose
// entitlement no longer appears in any fresh entry is marked for
// pruning.
func Diff(previous []ParsedEntry, fresh []types.MirrorListEntry, credentials types.CredentialSet) types.ReconciliationPlan {
	prevByKey := map[types.EntryKey]ParsedEntry{}
	for _, parsed := range previous {
		prevByKey[parsed.Entry.Key()] = parsed
	}

	ordered := append([]types.MirrorListEntry(nil), fresh...)
	SortEntries(ordered)

	plan := types.ReconciliationPlan{}
	freshKeys := map[types.EntryKey]struct{}{}
	freshEntitlements := map[string]struct{}{}
	for _, entry := range ordered {
		key := entry.Key()
		freshKeys[key] = struct{}{}
		freshEntitlements[entry.Entitlement] = struct{}{}

		prev, existed := prevByKey[key]
		switch {
		case !existed:
			plan.Changes = append(plan.Changes, types.EntryChange{Entry: entry, Action: types.ChangeAdded})
		case prev.Credential != credentials[entry.Entitlement]:
			plan.Changes = append(plan.Changes, types.EntryChange{Entry: entry, Action: types.ChangeRotated})
		default:
			plan.Changes = append(plan.Changes, types.EntryChange{Entry: entry, Action: types.ChangeUnchanged})
		}
	}

	removedEntitlements := map[string]struct{}{}
	var removed []ParsedEntry
	for _, parsed := range previous {
		if _, ok := freshKeys[parsed.Entry.Key()]; ok {
			continue
		}
		removed = append(removed, parsed)
		if _, ok := freshEntitlements[parsed.Entry.Entitlement]; !ok {
			removedEntitlements[parsed.Entry.Entitlement] = struct{}{}
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		a, b := removed[i].Entry, removed[j].Entry
		if a.Entitlement != b.Entitlement {
			return a.Entitlement < b.Entitlement
		}
		if a.Suite != b.Suite {
			return a.Suite < b.Suite
		}
		if a.Source != b.Source {
			return !a.Source
		}
		return a.Architecture < b.Architecture
	})
	for _, parsed := range removed {
		plan.Changes = append(plan.Changes, types.EntryChange{Entry: parsed.Entry, Action: types.ChangeRemoved})
	}
	plan.PruneKeyrings = sortedKeys(removedEntitlements)
	return plan
}
