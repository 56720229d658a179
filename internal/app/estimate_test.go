package app

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

func entryKey(entitlement, suite, arch string) types.EntryKey {
	return types.EntryKey{Entitlement: entitlement, Suite: suite, Architecture: arch}
}

func TestEstimate(t *testing.T) {
	svc, _, _, _ := newTestService(t, sampleContractJSON)
	svc.Metadata = &fakeMetadata{stats: map[types.EntryKey]ports.RepoIndexStats{
		entryKey("esm-infra", "jammy", "amd64"):         {Bytes: 1000, Packages: 10, Superseded: 2},
		entryKey("esm-infra", "jammy-updates", "amd64"): {Bytes: 500, Packages: 5},
		entryKey("esm-apps", "jammy", "amd64"):          {Bytes: 2000, Packages: 20},
	}}

	result, err := svc.Estimate(context.Background(), EstimateRequest{
		Token:     "C1token",
		Selection: testConfigureRequest().Selection,
	})
	require.NoError(t, err)

	assert.False(t, result.Estimate.Incomplete)
	assert.Equal(t, int64(3500), result.Estimate.TotalBytes)
	assert.Equal(t, 35, result.Estimate.TotalPackages)
	require.Len(t, result.Estimate.Repositories, 3)

	// Repository order follows the deterministic entry order.
	assert.Equal(t, entryKey("esm-apps", "jammy", "amd64"), result.Estimate.Repositories[0].Key)
	assert.Equal(t, entryKey("esm-infra", "jammy", "amd64"), result.Estimate.Repositories[1].Key)
	assert.Equal(t, entryKey("esm-infra", "jammy-updates", "amd64"), result.Estimate.Repositories[2].Key)
	assert.Equal(t, 2, result.Estimate.Repositories[1].Superseded)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "fips", result.Skipped[0].Name)
}

func TestEstimatePartialFailure(t *testing.T) {
	svc, _, _, _ := newTestService(t, sampleContractJSON)
	svc.Metadata = &fakeMetadata{
		stats: map[types.EntryKey]ports.RepoIndexStats{
			entryKey("esm-infra", "jammy", "amd64"):         {Bytes: 1000, Packages: 10},
			entryKey("esm-infra", "jammy-updates", "amd64"): {Bytes: 500, Packages: 5},
		},
		errs: map[types.EntryKey]error{
			entryKey("esm-apps", "jammy", "amd64"): errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("index fetch failed"),
		},
	}

	result, err := svc.Estimate(context.Background(), EstimateRequest{
		Token:     "C1token",
		Selection: testConfigureRequest().Selection,
	})
	require.NoError(t, err)

	// The failed repository contributes zero, flags the total partial.
	assert.True(t, result.Estimate.Incomplete)
	assert.Equal(t, int64(1500), result.Estimate.TotalBytes)
	assert.Equal(t, 15, result.Estimate.TotalPackages)
	require.Len(t, result.Estimate.Repositories, 3)
	assert.True(t, result.Estimate.Repositories[0].Failed)
	assert.False(t, result.Estimate.Repositories[1].Failed)
}

func TestEstimatePersistsNothing(t *testing.T) {
	svc, _, _, _ := newTestService(t, sampleContractJSON)

	_, err := svc.Estimate(context.Background(), EstimateRequest{
		Token:     "C1token",
		Selection: testConfigureRequest().Selection,
	})
	require.NoError(t, err)

	_, exists, err := svc.MirrorList.ReadDocument()
	require.NoError(t, err)
	assert.False(t, exists)

	creds, err := svc.Credentials.Load()
	require.NoError(t, err)
	assert.Empty(t, creds)

	_, exists, err = svc.State.Load()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEstimateInvalidSelection(t *testing.T) {
	svc, _, contract, _ := newTestService(t, sampleContractJSON)

	_, err := svc.Estimate(context.Background(), EstimateRequest{
		Token:     "C1token",
		Selection: types.Selection{Release: "warty", Architectures: []string{"amd64"}, Entitlements: []string{"infra"}},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	// Validation failures never reach the network.
	assert.Zero(t, contract.fetches)
}
