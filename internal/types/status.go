package types

import "time"

// InstallState is the persisted record of the last applied
// configuration. It feeds the status view; reconciliation never reads
// it back as an input.
type InstallState struct {
	Release       string    `yaml:"release"`
	Architectures []string  `yaml:"architectures"`
	Entitlements  []string  `yaml:"entitlements"`
	IncludeSource bool      `yaml:"include_source"`
	MirrorHost    string    `yaml:"mirror_host,omitempty"`
	MirrorPort    int       `yaml:"mirror_port,omitempty"`
	LastReconcile time.Time `yaml:"last_reconcile"`
}

// EntitlementStatus is one row of the read-only snapshot handed to
// the presentation layer.
type EntitlementStatus struct {
	Type          string
	Entitled      bool
	Selected      bool
	HasCredential bool
	HasKeyring    bool
	Suites        []string
}

// StatusSnapshot is the read-only feed for the dashboard. There is no
// mutation path back into the core.
type StatusSnapshot struct {
	AccountName   string
	AccountID     string
	EffectiveTo   time.Time
	Entitlements  []EntitlementStatus
	EntryCount    int
	LastReconcile time.Time
}
