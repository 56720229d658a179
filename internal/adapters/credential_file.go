package adapters

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

// CredentialFileAdapter persists the entitlement-to-credential
// mapping as a JSON file. The file is mode 0600; writes go through
// temp-then-rename so a crash cannot corrupt the store.
type CredentialFileAdapter struct {
	Path string
}

func NewCredentialFileAdapter(path string) *CredentialFileAdapter {
	return &CredentialFileAdapter{Path: path}
}

// Load reads the persisted store. A missing file is an empty store;
// unparseable content fails closed, never partially trusted.
func (a *CredentialFileAdapter) Load() (types.CredentialSet, error) {
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return types.CredentialSet{}, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read credential store " + a.Path).
			WithCause(err)
	}
	var set types.CredentialSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("credential store corrupt: " + a.Path).
			WithCause(err)
	}
	if set == nil {
		set = types.CredentialSet{}
	}
	return set, nil
}

// Reconcile keeps the fresh credential for each current entitlement
// and drops everything else, including previously stored entries for
// entitlements no longer present. The result is written back
// atomically before it is returned.
func (a *CredentialFileAdapter) Reconcile(fresh types.CredentialSet, currentEntitlements []string) (types.CredentialSet, error) {
	// Fail closed before touching anything if the store is corrupt.
	if _, err := a.Load(); err != nil {
		return nil, err
	}

	reconciled := types.CredentialSet{}
	for _, entType := range currentEntitlements {
		if secret, ok := fresh[entType]; ok && secret != "" {
			reconciled[entType] = secret
		}
	}

	data, err := json.MarshalIndent(reconciled, "", "  ")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode credential store").
			WithCause(err)
	}
	if err := writeFileAtomic(a.Path, append(data, '\n'), 0600); err != nil {
		return nil, err
	}
	return reconciled, nil
}

// Get returns the stored credential for an entitlement.
func (a *CredentialFileAdapter) Get(entitlement string) (string, error) {
	set, err := a.Load()
	if err != nil {
		return "", err
	}
	secret, ok := set[entitlement]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("missing resource credential for entitlement %s", entitlement))
	}
	return secret, nil
}

var _ ports.CredentialStorePort = (*CredentialFileAdapter)(nil)
