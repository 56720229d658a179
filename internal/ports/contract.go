package ports

import "context"

// ContractClientPort is the boundary to the external contract
// service. One call per invocation; retry policy belongs to the
// caller. The raw document shape is opaque to this port.
type ContractClientPort interface {
	Fetch(ctx context.Context, token string) ([]byte, error)
}
