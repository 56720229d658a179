package app

import (
	"time"

	"pop-mirror/internal/adapters"
	"pop-mirror/internal/ports"
)

type Service struct {
	Contract      ports.ContractClientPort
	ContractCache ports.ContractCachePort
	Credentials   ports.CredentialStorePort
	MirrorList    ports.MirrorListStorePort
	AuthFile      ports.AuthFilePort
	Keyring       ports.KeyringPort
	Metadata      ports.RepoMetadataPort
	State         ports.StatePort
	Clock         func() time.Time

	// EstimateWorkers bounds the concurrent index fetches of the
	// size estimator.
	EstimateWorkers int
}

// Options carry the external endpoints and timeouts of a service
// instance.
type Options struct {
	ContractEndpoint string
	Keyserver        string
	TimeoutSec       int
	EstimateWorkers  int
}

func NewService(layout Layout, opts Options) Service {
	workers := opts.EstimateWorkers
	if workers <= 0 {
		workers = 4
	}
	return Service{
		Contract:        adapters.NewContractHTTPAdapter(opts.ContractEndpoint, opts.TimeoutSec),
		ContractCache:   adapters.NewContractCacheAdapter(layout.ContractSnapshotPath()),
		Credentials:     adapters.NewCredentialFileAdapter(layout.CredentialsPath()),
		MirrorList:      adapters.NewMirrorListFileAdapter(layout.MirrorListPath()),
		AuthFile:        adapters.NewAuthFileAdapter(layout.AuthFilePath()),
		Keyring:         adapters.NewKeyringHTTPAdapter(layout.KeyringDir(), opts.Keyserver, opts.TimeoutSec),
		Metadata:        adapters.NewPackageIndexAdapter(opts.TimeoutSec),
		State:           adapters.NewStateFileAdapter(layout.StatePath()),
		Clock:           time.Now,
		EstimateWorkers: workers,
	}
}
