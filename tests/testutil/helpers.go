// Package testutil provides shared test helpers used across the
// integration and unit test packages.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// ContractEntitlement describes one entitlement of a synthetic
// contract document.
type ContractEntitlement struct {
	Type     string
	Entitled bool
	AptURL   string
	AptKey   string
	Suites   []string
	Token    string
}

// ContractDocument renders a contract service response in the wire
// shape: a single entry keyed by the contract token.
func ContractDocument(t *testing.T, token string, accountID string, entitlements []ContractEntitlement) string {
	t.Helper()

	rawEntitlements := make([]map[string]any, 0, len(entitlements))
	rawTokens := make([]map[string]any, 0, len(entitlements))
	for _, ent := range entitlements {
		raw := map[string]any{
			"type":     ent.Type,
			"entitled": ent.Entitled,
		}
		if ent.Entitled {
			raw["directives"] = map[string]any{
				"aptURL": ent.AptURL,
				"aptKey": ent.AptKey,
				"suites": ent.Suites,
			}
		}
		rawEntitlements = append(rawEntitlements, raw)
		if ent.Token != "" {
			rawTokens = append(rawTokens, map[string]any{
				"type":  ent.Type,
				"token": ent.Token,
			})
		}
	}

	document := map[string]any{
		token: map[string]any{
			"contractInfo": map[string]any{
				"name":                 "Test Account",
				"id":                   accountID,
				"createdAt":            "2025-01-15T10:00:00Z",
				"effectiveFrom":        "2025-01-15T10:00:00Z",
				"effectiveTo":          "2030-01-15T10:00:00Z",
				"resourceEntitlements": rawEntitlements,
			},
			"resourceTokens": rawTokens,
		},
	}
	data, err := json.Marshal(document)
	require.NoError(t, err)
	return string(data)
}
