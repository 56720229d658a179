package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pop-mirror/internal/types"
)

func testContract() types.ContractData {
	return types.ContractData{
		AccountName: "Example Corp",
		AccountID:   "cAHash",
		Entitlements: []types.EntitlementRecord{
			{
				Type:     "esm-apps",
				Entitled: true,
				Directive: &types.EntitlementDirectives{
					AptURL:     "https://esm.ubuntu.com/apps/ubuntu/",
					SigningKey: "ABCDEF02",
					Suites:     []string{"jammy", "jammy-updates"},
				},
			},
			{
				Type:     "esm-infra",
				Entitled: true,
				Directive: &types.EntitlementDirectives{
					AptURL:     "https://esm.ubuntu.com/infra/ubuntu/",
					SigningKey: "ABCDEF01",
					Suites:     []string{"jammy", "jammy-updates"},
				},
			},
			{Type: "fips", Entitled: false},
		},
	}
}

// ---------------------------------------------------------------------------
// EligibleEntitlements
// ---------------------------------------------------------------------------

func TestEligibleEntitlementsIntersection(t *testing.T) {
	records, skipped, err := EligibleEntitlements(testContract(), []string{"infra", "apps", "fips"})
	require.NoError(t, err)

	var entTypes []string
	for _, record := range records {
		entTypes = append(entTypes, record.Type)
	}
	assert.Equal(t, []string{"esm-apps", "esm-infra"}, entTypes)
	require.Len(t, skipped, 1)
	assert.Equal(t, "fips", skipped[0].Name)
	assert.Equal(t, "not entitled", skipped[0].Reason)
}

func TestEligibleEntitlementsShortAndLongNames(t *testing.T) {
	byShort, _, err := EligibleEntitlements(testContract(), []string{"infra"})
	require.NoError(t, err)
	byLong, _, err := EligibleEntitlements(testContract(), []string{"esm-infra"})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(byShort, byLong))
}

func TestEligibleEntitlementsDeduplicates(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
	}{
		{"short and long spelling", []string{"infra", "esm-infra"}},
		{"long then short", []string{"esm-infra", "infra"}},
		{"repeated name", []string{"infra", "infra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, skipped, err := EligibleEntitlements(testContract(), tt.requested)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "esm-infra", records[0].Type)
			require.Len(t, skipped, 1)
			assert.Equal(t, tt.requested[1], skipped[0].Name)
			assert.Equal(t, "duplicate selection", skipped[0].Reason)
		})
	}
}

func TestSelectEntriesUniqueKeysUnderDuplicateSelection(t *testing.T) {
	selection := types.Selection{
		Release:       "jammy",
		Architectures: []string{"amd64"},
		Entitlements:  []string{"infra", "esm-infra"},
	}
	entries, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)

	seen := map[types.EntryKey]int{}
	for _, entry := range entries {
		seen[entry.Key()]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "entry key emitted more than once: %+v", key)
	}
	assert.Len(t, entries, 2)
}

func TestEligibleEntitlementsAbsent(t *testing.T) {
	records, skipped, err := EligibleEntitlements(testContract(), []string{"infra", "ros"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, "not present in contract", skipped[0].Reason)
}

func TestEligibleEntitlementsEmptySelection(t *testing.T) {
	_, _, err := EligibleEntitlements(testContract(), []string{"unknown-type"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "empty entitlement selection")
}

// ---------------------------------------------------------------------------
// SuiteMatchesRelease
// ---------------------------------------------------------------------------

func TestSuiteMatchesRelease(t *testing.T) {
	tests := []struct {
		suite   string
		release string
		want    bool
	}{
		{"jammy", "jammy", true},
		{"jammy-updates", "jammy", true},
		{"jammy-security", "jammy", true},
		{"noble", "jammy", false},
		{"notjammy", "jammy", false},
		{"jammyish", "jammy", false},
		{"focal-updates", "jammy", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuiteMatchesRelease(tt.suite, tt.release), "%s vs %s", tt.suite, tt.release)
	}
}

// ---------------------------------------------------------------------------
// SelectEntries
// ---------------------------------------------------------------------------

func TestSelectEntriesBinaryPerArchSourcePerSuite(t *testing.T) {
	selection := types.Selection{
		Release:       "jammy",
		Architectures: []string{"amd64", "arm64"},
		Entitlements:  []string{"infra"},
		IncludeSource: true,
	}
	entries, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)

	// 2 suites x (2 archs + 1 source)
	require.Len(t, entries, 6)
	sourceCount := 0
	for _, entry := range entries {
		if entry.Source {
			sourceCount++
			assert.Empty(t, entry.Architecture)
		}
	}
	assert.Equal(t, 2, sourceCount)
}

func TestSelectEntriesDeterministicOrder(t *testing.T) {
	selection := types.Selection{
		Release:       "jammy",
		Architectures: []string{"arm64", "amd64"},
		Entitlements:  []string{"apps", "infra"},
		IncludeSource: true,
	}
	first, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)
	second, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))

	// Ordering: entitlement, suite, binaries before source, arch.
	assert.Equal(t, "esm-apps", first[0].Entitlement)
	assert.Equal(t, "jammy", first[0].Suite)
	assert.Equal(t, "amd64", first[0].Architecture)
	assert.False(t, first[0].Source)
	assert.Equal(t, "arm64", first[1].Architecture)
	assert.True(t, first[2].Source)
}

func TestSelectEntriesNoMatchingSuite(t *testing.T) {
	selection := types.Selection{
		Release:       "noble",
		Architectures: []string{"amd64"},
		Entitlements:  []string{"infra"},
	}
	entries, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSelectEntriesMirrorHostOverride(t *testing.T) {
	selection := types.Selection{
		Release:       "jammy",
		Architectures: []string{"amd64"},
		Entitlements:  []string{"infra"},
		MirrorHost:    "mirror.internal",
		MirrorPort:    8080,
	}
	entries, _, err := SelectEntries(testContract(), selection)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "http://mirror.internal:8080/infra/ubuntu/", entries[0].BaseURL)
}

func TestSelectEntriesDefaultURLWithoutDirectiveURL(t *testing.T) {
	contract := testContract()
	contract.Entitlements[1].Directive.AptURL = ""
	selection := types.Selection{
		Release:       "jammy",
		Architectures: []string{"amd64"},
		Entitlements:  []string{"infra"},
	}
	entries, _, err := SelectEntries(contract, selection)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "https://esm.ubuntu.com/infra/ubuntu/", entries[0].BaseURL)
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://esm.ubuntu.com/infra/ubuntu/", normalizeBaseURL("https://esm.ubuntu.com/infra", "infra"))
	assert.Equal(t, "https://esm.ubuntu.com/infra/ubuntu/", normalizeBaseURL("https://esm.ubuntu.com/infra/", "infra"))
	assert.Equal(t, "https://esm.ubuntu.com/infra/ubuntu/", normalizeBaseURL("https://esm.ubuntu.com/infra/ubuntu/", "infra"))
	assert.Equal(t, "https://archive.anbox-cloud.io/stable/", normalizeBaseURL("https://archive.anbox-cloud.io/stable", "anbox-cloud"))
}
