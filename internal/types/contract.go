package types

import "time"

// ContractData is an immutable snapshot of one contract resolution.
// It is never mutated after creation; a re-resolution replaces the
// whole snapshot.
type ContractData struct {
	AccountName   string              `json:"account_name"`
	AccountID     string              `json:"account_id"`
	CreatedAt     time.Time           `json:"created_at"`
	EffectiveFrom time.Time           `json:"effective_from"`
	EffectiveTo   time.Time           `json:"effective_to"`
	Entitlements  []EntitlementRecord `json:"entitlements"`
}

// EntitlementRecord describes one resource entitlement on a contract.
// Type is unique within a snapshot. Directives are present only when
// Entitled is true.
type EntitlementRecord struct {
	Type      string                 `json:"type"`
	Entitled  bool                   `json:"entitled"`
	Directive *EntitlementDirectives `json:"directives,omitempty"`
}

// EntitlementDirectives carry the repository coordinates the contract
// service hands out for an entitled resource.
type EntitlementDirectives struct {
	AptURL     string   `json:"apt_url"`
	SigningKey string   `json:"signing_key"`
	Suites     []string `json:"suites"`
}

// Entitlement looks up a record by type.
func (c ContractData) Entitlement(entType string) (EntitlementRecord, bool) {
	for _, record := range c.Entitlements {
		if record.Type == entType {
			return record, true
		}
	}
	return EntitlementRecord{}, false
}

// EntitledTypes returns the types of all entitled records, in snapshot
// order.
func (c ContractData) EntitledTypes() []string {
	var out []string
	for _, record := range c.Entitlements {
		if record.Entitled {
			out = append(out, record.Type)
		}
	}
	return out
}
