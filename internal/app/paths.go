package app

import "path/filepath"

// Layout derives every artifact path from the installation base
// directory. Components receive concrete paths, never the layout.
type Layout struct {
	BaseDir string
}

func NewLayout(baseDir string) Layout {
	return Layout{BaseDir: baseDir}
}

func (l Layout) MirrorListPath() string {
	return filepath.Join(l.BaseDir, "etc", "mirror.list")
}

func (l Layout) AuthFilePath() string {
	return filepath.Join(l.BaseDir, "etc", "apt", "auth.conf.d", "91pop-mirror")
}

func (l Layout) KeyringDir() string {
	return filepath.Join(l.BaseDir, "etc", "apt", "trusted.gpg.d")
}

func (l Layout) CredentialsPath() string {
	return filepath.Join(l.BaseDir, "credentials.json")
}

func (l Layout) ContractSnapshotPath() string {
	return filepath.Join(l.BaseDir, "contract.json")
}

func (l Layout) StatePath() string {
	return filepath.Join(l.BaseDir, "state.yaml")
}
