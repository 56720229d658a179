package app

import (
	"context"
	"testing"
	"time"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

type fakeContractClient struct {
	raw     string
	err     error
	fetches int
}

func (f *fakeContractClient) Fetch(ctx context.Context, token string) ([]byte, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.raw), nil
}

type fakeKeyring struct {
	materialized map[string]string
	pruned       []string
}

func newFakeKeyring() *fakeKeyring {
	return &fakeKeyring{materialized: map[string]string{}}
}

func (f *fakeKeyring) Materialize(ctx context.Context, keys map[string]string) error {
	for entType, keyID := range keys {
		f.materialized[entType] = keyID
	}
	return nil
}

func (f *fakeKeyring) Prune(entitlements []string) error {
	for _, entType := range entitlements {
		delete(f.materialized, entType)
		f.pruned = append(f.pruned, entType)
	}
	return nil
}

func (f *fakeKeyring) Present(entitlement string) bool {
	_, ok := f.materialized[entitlement]
	return ok
}

type fakeMetadata struct {
	stats map[types.EntryKey]ports.RepoIndexStats
	errs  map[types.EntryKey]error
}

func (f *fakeMetadata) FetchIndex(ctx context.Context, entry types.MirrorListEntry, credential string) (ports.RepoIndexStats, error) {
	key := entry.Key()
	if err, ok := f.errs[key]; ok {
		return ports.RepoIndexStats{}, err
	}
	return f.stats[key], nil
}

// newTestService assembles a service with real file adapters under a
// temp dir and fake network ports.
func newTestService(t *testing.T, contractJSON string) (Service, Layout, *fakeContractClient, *fakeKeyring) {
	t.Helper()
	layout := NewLayout(t.TempDir())
	contract := &fakeContractClient{raw: contractJSON}
	keyring := newFakeKeyring()

	svc := NewService(layout, Options{ContractEndpoint: "http://unused:8484"})
	svc.Contract = contract
	svc.Keyring = keyring
	svc.Metadata = &fakeMetadata{}
	svc.Clock = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return svc, layout, contract, keyring
}

func testConfigureRequest() ConfigureRequest {
	return ConfigureRequest{
		Token: "C1token",
		Selection: types.Selection{
			Release:       "jammy",
			Architectures: []string{"amd64"},
			Entitlements:  []string{"infra", "apps", "fips"},
		},
	}
}
