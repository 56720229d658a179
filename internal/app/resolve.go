package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pop-mirror/internal/core"
	"pop-mirror/internal/shared"
	"pop-mirror/internal/types"
)

// rawContractDocument mirrors the contract service's wire shape: a
// map keyed by the contract token, each value holding the contract
// info and the per-entitlement resource tokens.
type rawContractDocument map[string]rawContractEntry

type rawContractEntry struct {
	ContractInfo   *rawContractInfo   `json:"contractInfo"`
	ResourceTokens []rawResourceToken `json:"resourceTokens"`
}

type rawContractInfo struct {
	Name                 string           `json:"name"`
	ID                   string           `json:"id"`
	CreatedAt            string           `json:"createdAt"`
	EffectiveFrom        string           `json:"effectiveFrom"`
	EffectiveTo          string           `json:"effectiveTo"`
	ResourceEntitlements []rawEntitlement `json:"resourceEntitlements"`
}

type rawEntitlement struct {
	Type       string         `json:"type"`
	Entitled   bool           `json:"entitled"`
	Directives *rawDirectives `json:"directives"`
}

type rawDirectives struct {
	AptURL string   `json:"aptURL"`
	AptKey string   `json:"aptKey"`
	Suites []string `json:"suites"`
}

type rawResourceToken struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Resolve fetches the raw contract document and shapes it into the
// internal model. One fetch per call; partial resolution is preferred
// over all-or-nothing, so entitlements with unmapped types produce
// warnings, not failures. The shaped contract is persisted for the
// status view.
func (s Service) Resolve(ctx context.Context, token string) (ResolveOutcome, error) {
	raw, err := s.Contract.Fetch(ctx, token)
	if err != nil {
		return ResolveOutcome{}, err
	}

	outcome, err := shapeContract(raw)
	if err != nil {
		return ResolveOutcome{}, err
	}
	for _, warning := range outcome.Warnings {
		log.Ctx(ctx).Warn().Msg(warning)
	}

	if s.ContractCache != nil {
		if err := s.ContractCache.Save(outcome.Contract); err != nil {
			return ResolveOutcome{}, err
		}
	}
	for _, entType := range sortedCredentialTypes(outcome.Credentials) {
		log.Ctx(ctx).Debug().
			Str("entitlement", entType).
			Str("token", shared.RedactSecret(outcome.Credentials[entType])).
			Msg("resource credential resolved")
	}
	log.Ctx(ctx).Info().
		Str("account", outcome.Contract.AccountName).
		Int("entitlements", len(outcome.Contract.Entitlements)).
		Msg("contract resolved")
	return outcome, nil
}

func shapeContract(raw []byte) (ResolveOutcome, error) {
	var document rawContractDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return ResolveOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed contract: document is not valid JSON").
			WithCause(err)
	}
	if len(document) == 0 {
		return ResolveOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed contract: document contains no contract entry")
	}

	// The document is keyed by token and carries exactly one entry.
	// Iterate deterministically in case a server ever returns more.
	keys := make([]string, 0, len(document))
	for key := range document {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entry := document[keys[0]]

	if entry.ContractInfo == nil {
		return ResolveOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed contract: missing contractInfo")
	}
	info := entry.ContractInfo
	if info.ID == "" {
		return ResolveOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed contract: missing account id")
	}
	if info.ResourceEntitlements == nil {
		return ResolveOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed contract: missing resourceEntitlements")
	}

	contract := types.ContractData{
		AccountName:   info.Name,
		AccountID:     info.ID,
		CreatedAt:     parseContractTime(info.CreatedAt),
		EffectiveFrom: parseContractTime(info.EffectiveFrom),
		EffectiveTo:   parseContractTime(info.EffectiveTo),
	}

	var warnings []string
	seen := map[string]struct{}{}
	for _, raw := range info.ResourceEntitlements {
		if raw.Type == "" {
			warnings = append(warnings, "contract entitlement without a type, entry ignored")
			continue
		}
		if _, dup := seen[raw.Type]; dup {
			return ResolveOutcome{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("malformed contract: duplicate entitlement type %s", raw.Type))
		}
		seen[raw.Type] = struct{}{}

		record := types.EntitlementRecord{Type: raw.Type, Entitled: raw.Entitled}
		if raw.Entitled && raw.Directives != nil {
			record.Directive = &types.EntitlementDirectives{
				AptURL:     raw.Directives.AptURL,
				SigningKey: raw.Directives.AptKey,
				Suites:     raw.Directives.Suites,
			}
		}
		if raw.Entitled && !core.KnownEntitlement(raw.Type) {
			// Kept in the model for display, excluded from mirror
			// generation by the selection logic.
			warnings = append(warnings, fmt.Sprintf("unknown entitlement type: %s (excluded from mirror list)", raw.Type))
		}
		contract.Entitlements = append(contract.Entitlements, record)
	}

	credentials := types.CredentialSet{}
	for _, rt := range entry.ResourceTokens {
		if rt.Type == "" || rt.Token == "" {
			continue
		}
		credentials[rt.Type] = rt.Token
	}

	return ResolveOutcome{Contract: contract, Credentials: credentials, Warnings: warnings}, nil
}

func sortedCredentialTypes(credentials types.CredentialSet) []string {
	out := make([]string, 0, len(credentials))
	for entType := range credentials {
		out = append(out, entType)
	}
	sort.Strings(out)
	return out
}

func parseContractTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
