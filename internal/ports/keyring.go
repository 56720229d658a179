package ports

import "context"

// KeyringPort manages per-entitlement signing-key material.
type KeyringPort interface {
	// Materialize ensures a keyring file exists for each entitlement
	// type in keys (type -> signing key id). Existing files are kept.
	Materialize(ctx context.Context, keys map[string]string) error

	// Prune removes keyring files for the given entitlement types.
	Prune(entitlements []string) error

	// Present reports whether keyring material exists for the type.
	Present(entitlement string) bool
}
