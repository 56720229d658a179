package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pop-mirror/internal/core"
	"pop-mirror/internal/types"
)

// Configure runs the reconcile state machine: resolve the contract,
// reconcile credentials, build the fresh entry set, diff it against
// the persisted document, and apply. The mirror-list write is the
// single commit point; every error before it leaves the previous
// state untouched.
func (s Service) Configure(ctx context.Context, req ConfigureRequest) (ConfigureResult, error) {
	if strings.TrimSpace(req.Token) == "" {
		return ConfigureResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("contract token is required")
	}
	if err := core.ValidateSelection(ctx, req.Selection); err != nil {
		return ConfigureResult{}, err
	}

	// Resolve.
	outcome, err := s.Resolve(ctx, req.Token)
	if err != nil {
		return ConfigureResult{}, err
	}

	// Reconcile credentials. Prunes every stored credential whose
	// entitlement is no longer entitled or no longer on the contract.
	credentials, err := s.Credentials.Reconcile(outcome.Credentials, outcome.Contract.EntitledTypes())
	if err != nil {
		return ConfigureResult{}, err
	}

	// Build the fresh entry set.
	entries, skipped, err := core.Build(outcome.Contract, credentials, req.Selection)
	if err != nil {
		return ConfigureResult{}, err
	}
	for _, skip := range skipped {
		log.Ctx(ctx).Warn().
			Str("entitlement", skip.Name).
			Str("reason", skip.Reason).
			Msg("entitlement skipped")
	}

	// Diff against the persisted document.
	previousDoc, exists, err := s.MirrorList.ReadDocument()
	if err != nil {
		return ConfigureResult{}, err
	}
	var previous []core.ParsedEntry
	if exists {
		previous, err = core.ParseDocument(previousDoc)
		if err != nil {
			return ConfigureResult{}, err
		}
	}
	plan := core.Diff(previous, entries, credentials)

	// Apply. Keyring and auth material are staged first; the
	// mirror-list rename commits the run.
	if err := s.applyPlan(ctx, outcome.Contract, entries, credentials, plan); err != nil {
		return ConfigureResult{}, err
	}

	if err := s.saveState(req.Selection); err != nil {
		return ConfigureResult{}, err
	}

	result := ConfigureResult{
		Added:     plan.Count(types.ChangeAdded),
		Removed:   plan.Count(types.ChangeRemoved),
		Rotated:   plan.Count(types.ChangeRotated),
		Unchanged: plan.Count(types.ChangeUnchanged),
		Skipped:   skipped,
		Warnings:  outcome.Warnings,
		Entries:   len(entries),
	}
	log.Ctx(ctx).Info().
		Int("added", result.Added).
		Int("removed", result.Removed).
		Int("rotated", result.Rotated).
		Int("unchanged", result.Unchanged).
		Msg("reconcile applied")
	return result, nil
}

func (s Service) applyPlan(ctx context.Context, contract types.ContractData, entries []types.MirrorListEntry, credentials types.CredentialSet, plan types.ReconciliationPlan) error {
	keys := map[string]string{}
	for _, entry := range entries {
		record, ok := contract.Entitlement(entry.Entitlement)
		if !ok || record.Directive == nil {
			continue
		}
		if record.Directive.SigningKey != "" {
			keys[entry.Entitlement] = record.Directive.SigningKey
		}
	}
	if err := s.Keyring.Materialize(ctx, keys); err != nil {
		return err
	}
	if err := s.AuthFile.Write(entries, credentials); err != nil {
		return err
	}

	document, err := core.RenderDocument(entries, credentials)
	if err != nil {
		return err
	}
	// Commit point.
	if err := s.MirrorList.WriteDocument(document); err != nil {
		return err
	}

	if len(plan.PruneKeyrings) > 0 {
		if err := s.Keyring.Prune(plan.PruneKeyrings); err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Strs("entitlements", plan.PruneKeyrings).
			Msg("unused keyring material pruned")
	}
	return nil
}

func (s Service) saveState(selection types.Selection) error {
	return s.State.Save(types.InstallState{
		Release:       selection.Release,
		Architectures: selection.Architectures,
		Entitlements:  selection.Entitlements,
		IncludeSource: selection.IncludeSource,
		MirrorHost:    selection.MirrorHost,
		MirrorPort:    selection.MirrorPort,
		LastReconcile: s.Clock().UTC(),
	})
}
