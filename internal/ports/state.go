package ports

import "pop-mirror/internal/types"

// StatePort persists the installation state snapshot consumed by the
// status view.
type StatePort interface {
	Load() (types.InstallState, bool, error)
	Save(state types.InstallState) error
}

// ContractCachePort persists the shaped contract snapshot so status
// can render entitlements without a network round trip.
type ContractCachePort interface {
	Load() (types.ContractData, bool, error)
	Save(contract types.ContractData) error
}
