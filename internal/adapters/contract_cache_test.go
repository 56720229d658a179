package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pop-mirror/internal/types"
)

func TestContractCacheRoundTrip(t *testing.T) {
	adapter := NewContractCacheAdapter(filepath.Join(t.TempDir(), "contract.json"))

	_, exists, err := adapter.Load()
	require.NoError(t, err)
	assert.False(t, exists)

	want := types.ContractData{
		AccountName: "Test Account",
		AccountID:   "acct-1",
		EffectiveTo: time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC),
		Entitlements: []types.EntitlementRecord{
			{
				Type:     "esm-infra",
				Entitled: true,
				Directive: &types.EntitlementDirectives{
					AptURL:     "https://esm.ubuntu.com/infra/ubuntu/",
					SigningKey: "ABCD",
					Suites:     []string{"jammy"},
				},
			},
			{Type: "fips", Entitled: false},
		},
	}
	require.NoError(t, adapter.Save(want))

	got, exists, err := adapter.Load()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, want, got)
}

func TestContractCacheUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0644))

	adapter := NewContractCacheAdapter(path)
	_, _, err := adapter.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract snapshot unreadable")
}
