package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

// StateFileAdapter persists the installation state snapshot as YAML.
type StateFileAdapter struct {
	Path string
}

func NewStateFileAdapter(path string) StateFileAdapter {
	return StateFileAdapter{Path: path}
}

func (a StateFileAdapter) Load() (types.InstallState, bool, error) {
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return types.InstallState{}, false, nil
	}
	if err != nil {
		return types.InstallState{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read state file " + a.Path).
			WithCause(err)
	}
	var state types.InstallState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return types.InstallState{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("state file unreadable: " + a.Path).
			WithCause(err)
	}
	return state, true, nil
}

func (a StateFileAdapter) Save(state types.InstallState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode state file").
			WithCause(err)
	}
	return writeFileAtomic(a.Path, data, 0644)
}

var _ ports.StatePort = StateFileAdapter{}
