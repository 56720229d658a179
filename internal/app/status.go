package app

import (
	"context"

	"pop-mirror/internal/core"
	"pop-mirror/internal/types"
)

// Status assembles the read-only snapshot for the presentation layer
// from persisted artifacts only; it never touches the network.
func (s Service) Status(ctx context.Context) (types.StatusSnapshot, error) {
	snapshot := types.StatusSnapshot{}

	contract, haveContract, err := s.ContractCache.Load()
	if err != nil {
		return types.StatusSnapshot{}, err
	}
	state, haveState, err := s.State.Load()
	if err != nil {
		return types.StatusSnapshot{}, err
	}
	credentials, err := s.Credentials.Load()
	if err != nil {
		return types.StatusSnapshot{}, err
	}

	if haveContract {
		snapshot.AccountName = contract.AccountName
		snapshot.AccountID = contract.AccountID
		snapshot.EffectiveTo = contract.EffectiveTo
		for _, record := range contract.Entitlements {
			status := types.EntitlementStatus{
				Type:          record.Type,
				Entitled:      record.Entitled,
				Selected:      haveState && selectionIncludes(state.Entitlements, record.Type),
				HasCredential: credentials[record.Type] != "",
				HasKeyring:    s.Keyring.Present(record.Type),
			}
			if record.Directive != nil {
				status.Suites = record.Directive.Suites
			}
			snapshot.Entitlements = append(snapshot.Entitlements, status)
		}
	}
	if haveState {
		snapshot.LastReconcile = state.LastReconcile
	}

	document, exists, err := s.MirrorList.ReadDocument()
	if err != nil {
		return types.StatusSnapshot{}, err
	}
	if exists {
		entries, err := core.ParseDocument(document)
		if err != nil {
			return types.StatusSnapshot{}, err
		}
		snapshot.EntryCount = len(entries)
	}
	return snapshot, nil
}

// selectionIncludes matches a stored selection name against an
// entitlement type, accepting the short repository path form.
func selectionIncludes(selection []string, entType string) bool {
	for _, name := range selection {
		if name == entType {
			return true
		}
		if path, err := core.PrimaryRepoPath(entType); err == nil && path == name {
			return true
		}
	}
	return false
}
