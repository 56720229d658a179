package app

import "pop-mirror/internal/types"

type ConfigureRequest struct {
	Token     string
	Selection types.Selection
}

type ConfigureResult struct {
	Added     int
	Removed   int
	Rotated   int
	Unchanged int
	Skipped   []types.SkippedEntitlement
	Warnings  []string
	Entries   int
}

type EstimateRequest struct {
	Token     string
	Selection types.Selection
}

type EstimateResult struct {
	Estimate types.SizeEstimate
	Skipped  []types.SkippedEntitlement
	Warnings []string
}

// ResolveOutcome is the shaped result of one contract resolution.
type ResolveOutcome struct {
	Contract    types.ContractData
	Credentials types.CredentialSet
	Warnings    []string
}
