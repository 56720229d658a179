package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"pop-mirror/internal/adapters"
	"pop-mirror/internal/core"
	"pop-mirror/internal/types"
)

// Estimate approximates the mirror footprint for a selection without
// transferring package content. It reuses the builder's eligibility
// logic so the two can never drift, fetches only index metadata, and
// degrades to a partial estimate when individual fetches fail.
// Nothing is persisted; credentials come from the fresh resolution,
// not the store.
func (s Service) Estimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	if err := core.ValidateSelection(ctx, req.Selection); err != nil {
		return EstimateResult{}, err
	}

	outcome, err := s.Resolve(ctx, req.Token)
	if err != nil {
		return EstimateResult{}, err
	}

	entries, skipped, err := core.Build(outcome.Contract, outcome.Credentials, req.Selection)
	if err != nil {
		return EstimateResult{}, err
	}

	estimates := s.fetchEstimates(ctx, entries, outcome.Credentials)

	// Completion order of the concurrent fetches is meaningless;
	// estimates is indexed by the deterministic entry order, so the
	// aggregate below is stable.
	result := EstimateResult{Skipped: skipped, Warnings: outcome.Warnings}
	for _, repo := range estimates {
		result.Estimate.Repositories = append(result.Estimate.Repositories, repo)
		if repo.Failed {
			result.Estimate.Incomplete = true
			continue
		}
		result.Estimate.TotalBytes += repo.Bytes
		result.Estimate.TotalPackages += repo.Packages
	}
	return result, nil
}

func (s Service) fetchEstimates(ctx context.Context, entries []types.MirrorListEntry, credentials types.CredentialSet) []types.RepoEstimate {
	estimates := make([]types.RepoEstimate, len(entries))

	workers := s.EstimateWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				estimates[i] = s.estimateEntry(ctx, entries[i], credentials[entries[i].Entitlement])
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return estimates
}

func (s Service) estimateEntry(ctx context.Context, entry types.MirrorListEntry, credential string) types.RepoEstimate {
	estimate := types.RepoEstimate{
		Key:      entry.Key(),
		IndexURL: adapters.IndexURL(entry),
	}
	stats, err := s.Metadata.FetchIndex(ctx, entry, credential)
	if err != nil {
		// A partial estimate beats none for a pre-flight check; this
		// entry contributes zero and flags the estimate incomplete.
		log.Ctx(ctx).Warn().
			Str("entitlement", entry.Entitlement).
			Str("suite", entry.Suite).
			Err(err).
			Msg("index fetch failed, estimate incomplete")
		estimate.Failed = true
		return estimate
	}
	estimate.Bytes = stats.Bytes
	estimate.Packages = stats.Packages
	estimate.Superseded = stats.Superseded
	return estimate
}
