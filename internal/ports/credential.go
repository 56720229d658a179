package ports

import "pop-mirror/internal/types"

// CredentialStorePort owns credential persistence. Load fails closed
// on unparseable state; Reconcile prunes entries absent from the
// current entitlement set and writes the result back atomically.
type CredentialStorePort interface {
	Load() (types.CredentialSet, error)
	Reconcile(fresh types.CredentialSet, currentEntitlements []string) (types.CredentialSet, error)
	Get(entitlement string) (string, error)
}
