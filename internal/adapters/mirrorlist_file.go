package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/ports"
)

// MirrorListFileAdapter persists the mirror-list document. The write
// path is atomic; a concurrent mirror run never observes a
// half-written document.
type MirrorListFileAdapter struct {
	Path string
}

func NewMirrorListFileAdapter(path string) MirrorListFileAdapter {
	return MirrorListFileAdapter{Path: path}
}

func (a MirrorListFileAdapter) ReadDocument() (string, bool, error) {
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read mirror list " + a.Path).
			WithCause(err)
	}
	return string(data), true, nil
}

func (a MirrorListFileAdapter) WriteDocument(document string) error {
	return writeFileAtomic(a.Path, []byte(document), 0644)
}

var _ ports.MirrorListStorePort = MirrorListFileAdapter{}
